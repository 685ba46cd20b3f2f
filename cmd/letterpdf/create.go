package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	letterpdf "github.com/alnah/go-letterpdf"
	"github.com/alnah/go-letterpdf/internal/auth"
	"github.com/alnah/go-letterpdf/internal/fileutil"
	"github.com/alnah/go-letterpdf/internal/hints"
	"github.com/alnah/go-letterpdf/internal/pipeline"
)

// runCreate runs Pdf.Create once and writes or emails the result.
func runCreate(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseCreateFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: unexpected argument %q", ErrUsage, positional[0])
	}

	cfg, err := loadConfiguration(&flags.common, env)
	if err != nil {
		return err
	}
	applyRenderFlags(&flags.render, cfg)
	if flags.transport != "" {
		cfg.Mail.Transport = flags.transport
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	params, err := buildCreateParams(flags)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, &flags.common, "")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	defer func() { _ = logger.Sync() }()

	setup := &mailSetup{}
	if params.Output == letterpdf.OutputEmail {
		setup, err = newMailSetup(cfg, logger)
		if err != nil {
			return withHint(err, cfg)
		}
		defer setup.persist(logger)

		if setup.token != nil {
			if _, err := setup.token.OAuthToken(); errors.Is(err, auth.ErrTokenNotSet) {
				return withHint(err, cfg)
			}
		}
	}

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	creator, err := letterpdf.New(st, creatorOptions(cfg, logger, setup.mailer, env)...)
	if err != nil {
		return withHint(err, cfg)
	}
	defer func() { _ = creator.Close() }()

	result, err := creator.Create(ctx, params)
	if err != nil {
		return withHint(err, cfg)
	}

	return writeCreateResult(flags, params.Output, result, env)
}

// buildCreateParams maps flags onto CreateParams. Semantic checks are
// left to the Creator.
func buildCreateParams(f *createFlags) (letterpdf.CreateParams, error) {
	output := f.output
	if output == "" && f.outFile != "" {
		output = string(outputFromExtension(f.outFile))
	}
	mode, err := letterpdf.ParseOutputMode(output)
	if err != nil {
		return letterpdf.CreateParams{}, err
	}

	p := letterpdf.CreateParams{
		ContactIDs: f.contactID,
		TemplateID: f.templateID,
		ToEmail:    f.toEmail,
		Output:     mode,
	}
	if !f.pdfFormat {
		return p, nil
	}
	if f.pdfFormatID < 0 {
		return p, fmt.Errorf("%w: --pdf-format-id must not be negative", ErrUsage)
	}
	id := f.pdfFormatID
	p.PDFFormatID = &id
	return p, nil
}

// outputFromExtension infers the output mode from an --out file name.
func outputFromExtension(path string) letterpdf.OutputMode {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return letterpdf.OutputHTML
	default:
		return letterpdf.OutputPDF
	}
}

// writeCreateResult writes the PDF or HTML and prints a summary.
func writeCreateResult(f *createFlags, mode letterpdf.OutputMode, result *letterpdf.CreateResult, env *Environment) error {
	var path string
	switch mode {
	case letterpdf.OutputPDF:
		path = outputPath(f.outFile, result.FileName)
		if err := writeFile(path, result.PDF); err != nil {
			return err
		}
	case letterpdf.OutputHTML:
		path = outputPath(f.outFile, strings.TrimSuffix(result.FileName, ".pdf")+".html")
		if err := writeFile(path, []byte(mergedHTML(result.Letters))); err != nil {
			return err
		}
	}

	if f.common.quiet {
		return nil
	}

	summary := fmt.Sprintf("%d letter(s)", len(result.Letters))
	if result.PageCount > 0 {
		summary += fmt.Sprintf(", %d page(s)", result.PageCount)
	}
	if len(result.Skipped) > 0 {
		summary += fmt.Sprintf(", %d skipped", len(result.Skipped))
	}

	switch mode {
	case letterpdf.OutputEmail:
		fmt.Fprintf(env.Stdout, "Sent %s to %s (%s)\n", result.FileName, result.SentTo, summary)
	default:
		fmt.Fprintf(env.Stdout, "Wrote %s (%s)\n", path, summary)
	}
	for _, s := range result.Skipped {
		fmt.Fprintf(env.Stderr, "skipped %s (contact %d): %s\n", s.DisplayName, s.ContactID, s.Reason)
	}
	return nil
}

// outputPath returns flagPath, or fileName in the working directory.
// A flagPath ending in a separator or naming a directory receives fileName.
func outputPath(flagPath, fileName string) string {
	if flagPath == "" {
		return fileName
	}
	if strings.HasSuffix(flagPath, string(filepath.Separator)) {
		return filepath.Join(flagPath, fileName)
	}
	if info, err := os.Stat(flagPath); err == nil && info.IsDir() {
		return filepath.Join(flagPath, fileName)
	}
	return flagPath
}

// mergedHTML joins the letters into one previewable fragment.
func mergedHTML(letters []letterpdf.Letter) string {
	parts := make([]string, len(letters))
	for i, l := range letters {
		parts[i] = l.HTML
	}
	return pipeline.JoinLetters(parts)
}

// writeFile writes data atomically, creating parent directories.
func writeFile(path string, data []byte) error {
	if err := fileutil.WriteFileAtomic(path, data, filePermissions); err != nil {
		return fmt.Errorf("%w: %v%s", ErrWriteOutput, err, hints.ForOutputDirectory())
	}
	return nil
}
