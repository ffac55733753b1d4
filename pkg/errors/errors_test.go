package errors

import (
	"errors"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	sentinelErrors := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrDuplicateMarker", ErrDuplicateMarker, "duplicate marker"},
		{"ErrUnknownMarker", ErrUnknownMarker, "unknown marker"},
		{"ErrRegistrySealed", ErrRegistrySealed, "marker registry is sealed"},
		{"ErrInvalidMarkerName", ErrInvalidMarkerName, "invalid marker name"},
		{"ErrSelectionSyntax", ErrSelectionSyntax, "selection syntax error"},
		{"ErrLogFormat", ErrLogFormat, "log format error"},
		{"ErrInvalidLevel", ErrInvalidLevel, "invalid log level"},
		{"ErrInvalidFilter", ErrInvalidFilter, "invalid warning filter"},
		{"ErrWarningEscalated", ErrWarningEscalated, "warning escalated to error"},
		{"ErrConfigNotFound", ErrConfigNotFound, "config not found"},
		{"ErrConfigInvalid", ErrConfigInvalid, "invalid configuration"},
	}

	for _, tc := range sentinelErrors {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err == nil {
				t.Errorf("%s is nil", tc.name)
				return
			}
			if tc.err.Error() != tc.msg {
				t.Errorf("%s: got %q, want %q", tc.name, tc.err.Error(), tc.msg)
			}
		})
	}
}

func TestTypedErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		want     string
	}{
		{
			name:     "duplicate marker",
			err:      &DuplicateMarkerError{Name: "smoke"},
			sentinel: ErrDuplicateMarker,
			want:     `duplicate marker: "smoke"`,
		},
		{
			name:     "unknown marker",
			err:      &UnknownMarkerError{Name: "smoek"},
			sentinel: ErrUnknownMarker,
			want:     `unknown marker: "smoek"`,
		},
		{
			name:     "unknown marker with suggestion",
			err:      &UnknownMarkerError{Name: "smoek", Suggestion: "smoke"},
			sentinel: ErrUnknownMarker,
			want:     `unknown marker: "smoek" (did you mean "smoke"?)`,
		},
		{
			name:     "sealed registry",
			err:      &RegistrySealedError{Name: "late"},
			sentinel: ErrRegistrySealed,
			want:     `marker registry is sealed: cannot register "late"`,
		},
		{
			name:     "syntax error",
			err:      &SelectionSyntaxError{Position: 4, Message: "unexpected end of input"},
			sentinel: ErrSelectionSyntax,
			want:     "selection syntax error at position 4: unexpected end of input",
		},
		{
			name:     "syntax error with input",
			err:      &SelectionSyntaxError{Position: 0, Message: "empty atom", Input: "()"},
			sentinel: ErrSelectionSyntax,
			want:     `selection syntax error at position 0: empty atom (in "()")`,
		},
		{
			name:     "log format",
			err:      &LogFormatError{Sink: "file", Format: "%(foo)s", Reason: "unknown placeholder foo"},
			sentinel: ErrLogFormat,
			want:     `log format error: sink=file format="%(foo)s": unknown placeholder foo`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Error() != tc.want {
				t.Errorf("got %q, want %q", tc.err.Error(), tc.want)
			}
			if !errors.Is(tc.err, tc.sentinel) {
				t.Errorf("error should wrap %v", tc.sentinel)
			}
		})
	}
}

func TestTypedErrors_As(t *testing.T) {
	var err error = &UnknownMarkerError{Name: "smoek"}
	wrapped := errors.Join(errors.New("loading selection"), err)

	var target *UnknownMarkerError
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As failed to match *UnknownMarkerError")
	}
	if target.Name != "smoek" {
		t.Errorf("got name %q, want %q", target.Name, "smoek")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		want     string
	}{
		{
			name:     "marker name",
			err:      NewMarkerNameError("bad name", "contains whitespace"),
			sentinel: ErrInvalidMarkerName,
			want:     `invalid marker name: "bad name": contains whitespace`,
		},
		{
			name:     "level",
			err:      NewLevelError("VERBOSE"),
			sentinel: ErrInvalidLevel,
			want:     "invalid log level: VERBOSE",
		},
		{
			name:     "filter",
			err:      NewFilterError("mute::X", "unknown action"),
			sentinel: ErrInvalidFilter,
			want:     `invalid warning filter: "mute::X": unknown action`,
		},
		{
			name:     "config",
			err:      NewConfigError("log_file.max_size", -1),
			sentinel: ErrConfigInvalid,
			want:     "invalid configuration: field=log_file.max_size value=-1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err == nil {
				t.Fatal("expected error, got nil")
			}
			if tc.err.Error() != tc.want {
				t.Errorf("got %q, want %q", tc.err.Error(), tc.want)
			}
			if !errors.Is(tc.err, tc.sentinel) {
				t.Errorf("error should wrap %v", tc.sentinel)
			}
		})
	}
}
