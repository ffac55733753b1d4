package logview

import (
	"context"
	"errors"
	"io"

	"github.com/nxadm/tail"
)

// Line is one line read from the file sink.
type Line struct {
	Text   string
	Num    int
	Offset int64 // file position reported by the tailer, for resuming
}

// Options controls how the file sink is read.
// Options 控制文件接收端的读取方式。
type Options struct {
	// Follow keeps reading as the file grows, across lumberjack rotations.
	Follow bool
	// FromEnd starts at the current end of file instead of the beginning.
	FromEnd bool
	// Poll uses stat polling instead of inotify.
	Poll bool
}

// ErrStop can be returned by the line callback to end reading early without error.
var ErrStop = errors.New("stop tailing")

// Tail streams lines of path to fn until EOF (without Follow), ctx is done,
// or fn returns an error.
// Tail 读取日志文件的行并交给 fn 处理。
func Tail(ctx context.Context, path string, opts Options, fn func(Line) error) error {
	cfg := tail.Config{
		Follow:    opts.Follow,
		ReOpen:    opts.Follow, // lumberjack renames the file on rotation
		MustExist: !opts.Follow,
		Poll:      opts.Poll,
		Logger:    tail.DiscardingLogger,
	}
	if opts.FromEnd {
		cfg.Location = &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	}

	t, err := tail.TailFile(path, cfg)
	if err != nil {
		return err
	}
	defer func() {
		t.Kill(nil)
		// The tail goroutine may be blocked handing over a line; drain until it closes Lines.
		go func() {
			for range t.Lines {
			}
		}()
		_ = t.Wait()
		t.Cleanup()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-t.Lines:
			if !ok {
				if err := t.Wait(); err != nil && !errors.Is(err, tail.ErrStop) {
					return err
				}
				return nil
			}
			if line.Err != nil {
				return line.Err
			}
			if err := fn(Line{Text: line.Text, Num: line.Num, Offset: line.SeekInfo.Offset}); err != nil {
				if errors.Is(err, ErrStop) {
					return nil
				}
				return err
			}
		}
	}
}
