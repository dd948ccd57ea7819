// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/visamark/visamark/api"
	"github.com/visamark/visamark/cmd/visamark/cli"
)

// DocumentsCommand returns the "documents" command group.
func DocumentsCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:    "documents",
		Summary: "Manage uploaded documents",
		Subcommands: []*cli.Command{
			documentsListCommand(logger),
			documentsUploadCommand(logger),
			documentsDeleteCommand(logger),
		},
	}
}

func documentsListCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Summary: "List uploaded documents and their review status",
		Usage:   "visamark documents list",
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}

			session, err := cli.Connect(logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			documents, err := session.Documents(ctx)
			if err != nil {
				return cli.FromAPI(err)
			}
			if len(documents) == 0 {
				fmt.Println("No documents uploaded.")
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "ID\tTYPE\tFILE\tSTATUS\tUPLOADED")
			for _, document := range documents {
				status := document.Status
				if document.Status == api.DocumentRejected && document.RejectionReason != "" {
					status = fmt.Sprintf("%s (%s)", status, document.RejectionReason)
				}
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
					document.ID, document.DocumentType, document.FileName,
					status, document.UploadedAt.Format("2006-01-02"))
			}
			return writer.Flush()
		},
	}
}

func documentsUploadCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:    "upload",
		Summary: "Upload a document for review",
		Usage:   "visamark documents upload <type> <file>",
		Examples: []cli.Example{
			{
				Description: "Upload a passport scan",
				Command:     "visamark documents upload passport ./passport.pdf",
			},
			{
				Description: "Upload a bank statement",
				Command:     "visamark documents upload bank_statement ./statement-2026-08.pdf",
			},
		},
		Run: func(args []string) error {
			if len(args) < 2 {
				return cli.Validation("document type and file are required\n\nUsage: visamark documents upload <type> <file>")
			}
			if len(args) > 2 {
				return cli.Validation("unexpected argument: %s", args[2])
			}
			documentType, path := args[0], args[1]

			file, err := os.Open(path)
			if err != nil {
				return cli.Validation("opening %s: %v", path, err)
			}
			defer file.Close()

			session, err := cli.Connect(logger)
			if err != nil {
				return err
			}

			// Uploads can be large; give them more room than the
			// usual request timeout.
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			document, err := session.UploadDocument(ctx, documentType, filepath.Base(path), file)
			if err != nil {
				return cli.FromAPI(err)
			}
			fmt.Fprintf(os.Stderr, "Uploaded %s as %s (id %s, status %s).\n",
				document.FileName, document.DocumentType, document.ID, document.Status)
			return nil
		},
	}
}

func documentsDeleteCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:    "delete",
		Summary: "Delete an uploaded document",
		Usage:   "visamark documents delete <id>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("document ID is required\n\nUsage: visamark documents delete <id>")
			}

			session, err := cli.Connect(logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			if err := session.DeleteDocument(ctx, args[0]); err != nil {
				return cli.FromAPI(err)
			}
			fmt.Fprintln(os.Stderr, "Deleted.")
			return nil
		},
	}
}
