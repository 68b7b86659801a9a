package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"pdfshelf/internal/bootstrap"
	"pdfshelf/internal/config"
	"pdfshelf/internal/domain/services"
	"pdfshelf/internal/service"
	"pdfshelf/internal/storage"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed folders")
	clearData := flag.Bool("clear-data", false, "Clear all folders and PDF records (keep schema)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: cannot run --drop-tables or --clear-data in production environment")
	}

	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()

	switch {
	case *clearData:
		log.Printf("Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	case *schemaOnly:
		log.Printf("Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	default:
		log.Printf("Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	ctx := context.Background()
	stores, err := bootstrap.OpenStores(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open record store: %v", err)
	}
	defer stores.Close()

	if *dropTables {
		log.Println("Dropping all tables...")
		if err := stores.DropTables(ctx); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	log.Println("Ensuring database schema is up to date...")
	if err := stores.RunSchema(ctx); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}

	if *schemaOnly {
		log.Println("Schema setup complete (schema-only mode)")
		return
	}

	if *clearData {
		if err := stores.ClearData(ctx); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("Data cleared")
		return
	}

	blobs, err := storage.NewBlobStore(cfg.UploadRoot, logger)
	if err != nil {
		log.Fatalf("Failed to prepare upload root: %v", err)
	}

	// Seed through the service layer so names, tags and files follow the same rules as uploads
	guard := service.NewAccessGuard(stores.Folders, logger)
	folderService := service.NewFolderService(stores.Folders, stores.Pdfs, blobs, stores.TxManager, guard, logger)
	pdfService := service.NewPdfService(stores.Pdfs, blobs, guard, logger)

	for _, seed := range seedFolders() {
		folder, err := folderService.AddFolder(ctx, &services.AddFolderRequest{Name: seed.name})
		if err != nil {
			log.Printf("Failed to create folder %q: %v", seed.name, err)
			continue
		}
		for _, pdf := range seed.pdfs {
			record, err := pdfService.UploadPdf(ctx, &services.UploadPdfRequest{
				FolderID: folder.ID,
				Filename: pdf.filename,
				Tags:     pdf.tags,
				Content:  bytes.NewReader(samplePDF(pdf.title)),
			})
			if err != nil {
				log.Printf("Failed to upload %q: %v", pdf.filename, err)
				continue
			}
			log.Printf("Created %s/%s (folder %d, pdf %d)", folder.Name, record.Filename, folder.ID, record.ID)
		}
	}

	log.Println("Seeding complete")
}

type seedPdf struct {
	filename string
	tags     string
	title    string
}

type seedFolder struct {
	name string
	pdfs []seedPdf
}

func seedFolders() []seedFolder {
	return []seedFolder{
		{
			name: "Invoices",
			pdfs: []seedPdf{
				{filename: "invoice-2024-01.pdf", tags: "finance,2024", title: "Invoice January"},
				{filename: "invoice-2024-02.pdf", tags: "finance,2024", title: "Invoice February"},
			},
		},
		{
			name: "Manuals",
			pdfs: []seedPdf{
				{filename: "router_setup.pdf", tags: "network,setup", title: "Router Setup"},
			},
		},
		{name: "Empty"},
	}
}

// samplePDF renders a one-page PDF showing title. Offsets in the xref table
// are computed, so viewers open it without repair.
func samplePDF(title string) []byte {
	content := fmt.Sprintf("BT /F1 24 Tf 72 720 Td (%s) Tj ET", title)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}
