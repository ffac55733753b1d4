package commands

import (
	"github.com/netxfw/testsel/internal/selection"
	"github.com/spf13/cobra"
)

func newMarkersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "markers",
		Short: "List declared markers",
		// Short: 列出已声明的标记
		Long: `List declared markers with their descriptions, in declaration order.
With -m, only the markers the expression refers to are listed.
按声明顺序列出标记及其描述；指定 -m 时仅列出表达式引用的标记。`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationDataOutput: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			e := NewCommandExecutor(cmd)
			return e.Do(func() error {
				s, err := e.Session()
				if err != nil {
					return err
				}

				var only map[string]bool
				if !s.Selector().SelectsAll() {
					only = make(map[string]bool)
					for _, name := range selection.Markers(s.Selector().Expression()) {
						only[name] = true
					}
				}

				markers := s.Registry().Markers()
				if len(markers) == 0 {
					e.PrintWarning("No markers declared")
					return nil
				}
				for _, m := range markers {
					if only != nil && !only[m.Name] {
						continue
					}
					if m.Description == "" {
						e.Printf("@%s\n", m.Name)
						continue
					}
					e.Printf("@%s: %s\n", m.Name, m.Description)
				}
				return nil
			})
		},
	}
}
