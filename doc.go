// Package letterpdf implements the Pdf.Create operation of a CRM: it
// mail-merges a message template for a list of contacts, renders the
// letters to PDF with headless Chrome, and emails or returns the result.
//
// # Quick Start
//
//	st, err := store.Open(ctx, "crm.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
//
//	creator, err := letterpdf.New(st, letterpdf.WithMailer(mailer))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer creator.Close()
//
//	result, err := creator.Create(ctx, letterpdf.CreateParams{
//	    ContactIDs: "12,14",
//	    TemplateID: 3,
//	    Output:     letterpdf.OutputPDF,
//	})
//
// # Pipeline
//
//  1. Parameter validation (contact id list, template id, recipient)
//  2. Domain, template and PDF format lookup
//  3. Message formatting: <img> protection, &nbsp; compaction
//  4. Token extraction and contact lookup
//  5. Per contact: suppression check, token replacement, optional
//     template engine pass, activity record
//  6. Document assembly and PDF rendering (skipped in html mode)
//  7. Email delivery (email mode)
//
// # Parallel Requests
//
// A Creator is safe for concurrent use when its renderer is. Servers share
// a RendererPool between requests:
//
//	pool := letterpdf.NewRendererPool(letterpdf.ResolvePoolSize(0), func() letterpdf.Renderer {
//	    return letterpdf.NewChromeRenderer(0, logger)
//	})
//	defer pool.Close()
//	creator, err := letterpdf.New(st, letterpdf.WithRenderer(pool))
package letterpdf
