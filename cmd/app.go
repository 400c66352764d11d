// Package cmd implements the CLI application to extract transactions from broker statements.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/etnz/statement"
	"github.com/etnz/statement/rules"
	"github.com/etnz/statement/sbroker"
	"github.com/google/subcommands"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Commands are the subcommands of the application.
var Commands = []subcommands.Command{
	&extractCmd{},
	&identifyCmd{},
	&rulesCmd{},
	&topicCmd{},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		c.Register(cmd, "statements")
	}
}

// Environment variables providing the defaults of the global flags.
const (
	EnvRules   = "STX_RULES"
	EnvVerbose = "STX_VERBOSE"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var rulePaths = newPathList(os.Getenv(EnvRules))
var verbose = flag.Bool("v", envBool(EnvVerbose), "Log the extraction steps on stderr (env "+EnvVerbose+")")

func init() {
	flag.Var(rulePaths, "rules", "YAML rule file, repeatable (env "+EnvRules+", colon separated)")
}

// envBool reads a boolean environment variable, false when unset or invalid.
func envBool(name string) bool {
	b, _ := strconv.ParseBool(os.Getenv(name))
	return b
}

// pathList is a repeatable flag. Values given on the command line replace the environment ones.
type pathList struct {
	paths []string
	set   bool
}

func newPathList(env string) *pathList {
	l := &pathList{}
	for _, p := range filepath.SplitList(env) {
		if p != "" {
			l.paths = append(l.paths, p)
		}
	}
	return l
}

func (l *pathList) String() string { return strings.Join(l.paths, string(filepath.ListSeparator)) }
func (l *pathList) Set(v string) error {
	if !l.set {
		l.paths, l.set = nil, true
	}
	l.paths = append(l.paths, v)
	return nil
}

// newLogger returns the logger on stderr. Only warnings are printed unless verbose.
func newLogger() *log.Logger {
	level := log.WarnLevel
	if *verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "stx",
		Level:           level,
	})
}

// NewRegistry returns the built-in extractors followed by the ones of the rule files.
func NewRegistry(logger *log.Logger, policy statement.ConflictPolicy) (*statement.Registry, error) {
	opts := []statement.Option{statement.WithLogger(logger), statement.WithConflictPolicy(policy)}
	securities := statement.NewSecurities()
	reg := statement.NewRegistry(sbroker.New(securities, opts...))

	var errs []error
	for _, path := range rulePaths.paths {
		f, err := rules.Load(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		e, err := f.Compile(securities, opts...)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		logger.Debug("rules loaded", "path", path, "label", e.Label())
		reg.Register(e)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return reg, nil
}

// ParseEncoding returns the decoder of a text encoding name, nil for UTF-8.
func ParseEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	}
	return nil, fmt.Errorf("unknown encoding %q, want utf-8, latin1 or windows-1252", name)
}

// ReadDocuments reads the named files, or stdin when there is none or the name is "-".
func ReadDocuments(paths []string, enc encoding.Encoding) ([]*statement.RawDocument, error) {
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	var docs []*statement.RawDocument
	for _, path := range paths {
		var data []byte
		var err error
		source := path
		if path == "-" {
			source = "<stdin>"
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", source, err)
		}
		if enc != nil {
			if data, err = enc.NewDecoder().Bytes(data); err != nil {
				return nil, fmt.Errorf("cannot decode %s: %w", source, err)
			}
		}
		docs = append(docs, statement.NewRawDocument(source, string(data)))
	}
	return docs, nil
}
