package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

type Logger = zerolog.Logger

var GlobalLogger Logger

var (
	componentsFilter = make(map[string]bool)
	all              = true
	lock             = sync.RWMutex{}
)

// ComponentFilterWriter drops records of components disabled by ApplyComponentsFilter.
type ComponentFilterWriter struct {
	Writer io.Writer
	Name   string
}

func (w ComponentFilterWriter) Write(p []byte) (n int, err error) {
	if !componentEnabled(w.Name) {
		return len(p), nil
	}
	return w.Writer.Write(p)
}

func componentEnabled(name string) bool {
	lock.RLock()
	defer lock.RUnlock()

	enabled, found := componentsFilter[name]
	if !found {
		return all
	}
	return enabled
}

func ApplyComponentsFilterEnv() {
	if logFilter := os.Getenv("DIAMOND_LOG_FILTER"); logFilter != "" {
		ApplyComponentsFilter(logFilter)
	}
}

// ApplyComponentsFilter takes a colon-separated list of components.
// A leading '-' disables the component, "all" addresses every component.
func ApplyComponentsFilter(filter string) {
	comps := strings.Split(filter, ":")

	lock.Lock()
	defer lock.Unlock()

	for _, comp := range comps {
		if comp == "" {
			continue
		}

		enabled := true
		if comp[0] == '-' {
			enabled = false
			comp = comp[1:]
		}

		if comp == "all" {
			all = enabled
			for k := range componentsFilter {
				componentsFilter[k] = enabled
			}
		} else {
			componentsFilter[comp] = enabled
		}
	}
}

func SetupGlobalLogger(level string) {
	if err := TrySetupGlobalLevel(level); err != nil {
		panic(err)
	}
	GlobalLogger = NewLogger("global")
}

func TrySetupGlobalLevel(level string) error {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(l)
	return nil
}

func makeBold(str any, disabled bool) string {
	const colorBold = 1

	if disabled {
		return fmt.Sprintf("%s", str)
	}
	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", colorBold, str)
}

func makeComponentFormatter(noColor bool) zerolog.Formatter {
	return func(c any) string {
		return makeBold(fmt.Sprintf("[%s]\t", c), noColor)
	}
}

func NewLogger(component string) Logger {
	return newConsoleLogger(component).
		With().
		Str(FieldComponent, component).
		Timestamp().
		Logger()
}

// NewLoggerWithWriter builds a JSON logger, mostly for tests.
func NewLoggerWithWriter(component string, writer io.Writer) Logger {
	return zerolog.New(ComponentFilterWriter{
		Writer: writer,
		Name:   component,
	}).
		With().
		Str(FieldComponent, component).
		Timestamp().
		Logger()
}

func newConsoleLogger(component string) zerolog.Logger {
	noColor := os.Getenv("NO_COLOR") != "" || !term.IsTerminal(int(os.Stderr.Fd()))

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.DateTime,
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			FieldComponent,
			zerolog.MessageFieldName,
		},
		FieldsExclude:    []string{FieldComponent},
		FormatFieldValue: makeComponentFormatter(noColor),
		NoColor:          noColor,
	}
	return zerolog.New(ComponentFilterWriter{
		Writer: consoleWriter,
		Name:   component,
	})
}

func Nop() Logger {
	return zerolog.Nop()
}
