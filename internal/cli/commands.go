package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/tsawler/folio"
	"github.com/tsawler/folio/format"
	"github.com/tsawler/folio/htmldoc"
	"github.com/tsawler/folio/model"
	"github.com/tsawler/folio/style"
)

func newBuildCommand(a *app) *cobra.Command {
	var output, formatName string
	var watch bool
	cmd := &cobra.Command{
		Use:   "build <description.yaml>",
		Short: "Build a document from a YAML description",
		Long: `Build a document from a YAML description and save it.

The output format is taken from the output file extension. Without --output
the description's name is used with the extension of --format (default docx).
With --watch the document is rebuilt whenever the description changes.

Examples:
  folio build report.yaml
  folio build report.yaml -o report.rtf
  folio build report.yaml --format html --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := style.ParseMode(a.cfg.StyleMode)
			if err != nil {
				return err
			}
			out, err := outputName(args[0], output, formatName)
			if err != nil {
				return err
			}

			build := func() error {
				desc, err := LoadDescription(a.fs, args[0])
				if err != nil {
					return err
				}
				doc, err := Build(desc, a.fs, filepath.Dir(args[0]), mode, a.log)
				if err != nil {
					return err
				}
				if err := folio.SaveFs(a.fs, doc, out); err != nil {
					return err
				}
				a.log.WithFields(logrus.Fields{"document": doc.ID, "output": out}).Info("document built")
				success(cmd.OutOrStdout(), "wrote %s", out)
				return nil
			}
			if !watch {
				return build()
			}

			fw, err := watchFile(args[0], a.log)
			if err != nil {
				return err
			}
			if err := build(); err != nil {
				a.log.WithError(err).Error("build failed")
			}
			return fw.run(cmd.Context(), build)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	cmd.Flags().StringVarP(&formatName, "format", "f", "", "output format when --output is not given (docx, html, rtf)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "rebuild when the description changes")
	return cmd
}

// outputName derives the output file from the input name when output is
// empty.
func outputName(input, output, formatName string) (string, error) {
	if output != "" {
		if formatName != "" && format.Detect(output) != format.Parse(formatName) {
			return "", fmt.Errorf("--format %s does not match output %s", formatName, output)
		}
		return output, nil
	}
	f := format.DOCX
	if formatName != "" {
		f = format.Parse(formatName)
		if !f.Writable() {
			return "", fmt.Errorf("%w: %q", folio.ErrUnsupportedFormat, formatName)
		}
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + f.Extension(), nil
}

func newConvertCommand(a *app) *cobra.Command {
	var output, formatName string
	var navigation string
	cmd := &cobra.Command{
		Use:   "convert <input.html>",
		Short: "Convert an HTML page to DOCX, HTML, or RTF",
		Long: `Convert an HTML page. Site navigation is dropped according to --navigation
(none, explicit, standard, aggressive). Use "-o -" with --format to write to
standard output.

Examples:
  folio convert page.html -o page.docx
  folio convert page.html -o - --format rtf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := a.cfg.Navigation
			if cmd.Flags().Changed("navigation") {
				mode = navigation
			}
			im := folio.Open(args[0]).
				Fs(a.fs).
				Logger(a.log).
				ExcludeNavigation(htmldoc.ParseNavigationExclusion(mode))

			if output == "-" {
				f := format.Parse(formatName)
				if !f.Writable() {
					return fmt.Errorf("writing to standard output needs --format")
				}
				if f == format.DOCX && isTerminal(cmd.OutOrStdout()) {
					return fmt.Errorf("refusing to write DOCX to a terminal")
				}
				doc, err := im.Document()
				if err != nil {
					return err
				}
				return folio.Write(cmd.OutOrStdout(), doc, f)
			}

			out, err := outputName(args[0], output, formatName)
			if err != nil {
				return err
			}
			if out == args[0] {
				return fmt.Errorf("output would overwrite %s", args[0])
			}
			if err := im.SaveAs(out); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "wrote %s", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", `output file, or "-" for standard output`)
	cmd.Flags().StringVarP(&formatName, "format", "f", "", "output format (docx, html, rtf)")
	cmd.Flags().StringVar(&navigation, "navigation", "standard", "navigation exclusion mode")
	return cmd
}

func newTablesCommand(a *app) *cobra.Command {
	var markdown bool
	cmd := &cobra.Command{
		Use:   "tables <input.html>",
		Short: "Print the tables of an HTML page as CSV or markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := folio.Open(args[0]).
				Fs(a.fs).
				Logger(a.log).
				ExcludeNavigation(htmldoc.ParseNavigationExclusion(a.cfg.Navigation)).
				Document()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			n := 0
			for _, sec := range doc.Sections {
				for _, el := range sec.Elements {
					t, ok := el.(*model.Table)
					if !ok {
						continue
					}
					if n > 0 {
						fmt.Fprintln(w)
					}
					n++
					if markdown {
						fmt.Fprint(w, t.ToMarkdown())
					} else {
						fmt.Fprint(w, t.ToCSV())
					}
				}
			}
			a.log.WithField("tables", n).Debug("tables printed")
			return nil
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print markdown instead of CSV")
	return cmd
}

func newDetectCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <file>...",
		Short: "Report the format of files",
		Long: `Report the format of each file from its extension, falling back to its
content when the extension is not recognized.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, name := range args {
				f, err := detect(a.fs, name)
				if err != nil {
					return err
				}
				_, _ = nameColor.Fprint(w, name)
				fmt.Fprintf(w, ": %s\n", f)
			}
			return nil
		},
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func detect(fs afero.Fs, name string) (format.Format, error) {
	if f := format.Detect(name); f != format.Unknown {
		return f, nil
	}
	file, err := fs.Open(name)
	if err != nil {
		return format.Unknown, err
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return format.Unknown, err
	}
	return format.DetectFromReader(file, info.Size())
}
