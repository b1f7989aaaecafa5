package client

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mwantia/godepot/pkg/files"
)

func NewFilesCommand() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "files",
		Short: "Manage files on a running server",
		Long:  "List, upload, download or remove files on a running Godepot server.",
	}

	cmd.PersistentFlags().StringVarP(&server, "server", "s", "http://localhost:5000", "Base URL of the Godepot server")

	cmd.AddCommand(NewFilesListCommand(&server))
	cmd.AddCommand(NewFilesUploadCommand(&server))
	cmd.AddCommand(NewFilesStatsCommand(&server))
	cmd.AddCommand(NewFilesRemoveCommand(&server))

	return cmd
}

func NewFilesListCommand(server *string) *cobra.Command {
	var user string
	var page int
	var limit int

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List stored files",
		Long:  "List the files stored on the server, optionally filtered by uploader.",
		RunE: func(cmd *cobra.Command, args []string) error {
			depot := NewDepotClient(*server)

			listing, err := depot.List(cmd.Context(), user, page, limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSIZE\tUPLOADER\tDOWNLOADS\tCREATED")
			for _, f := range listing.Files {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					f.ID, f.OriginalName, humanize.Bytes(uint64(f.Size)),
					f.UploadedBy, f.DownloadCount, humanize.Time(f.CreatedAt))
			}
			w.Flush()

			fmt.Printf("\nPage %d of %d (%d files total)\n",
				listing.Pagination.Current, listing.Pagination.Total, listing.Pagination.TotalFiles)
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "Filter by uploader label")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page to display")
	cmd.Flags().IntVarP(&limit, "limit", "l", 50, "Page size")

	return cmd
}

func NewFilesUploadCommand(server *string) *cobra.Command {
	var uploadedBy string
	var description string
	var tags string

	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a file",
		Long:  "Upload a local file to the server together with its metadata.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			depot := NewDepotClient(*server)

			info, err := depot.Upload(cmd.Context(), args[0], uploadedBy, description, tags)
			if err != nil {
				return err
			}

			fmt.Printf("Uploaded %s as %s (%s)\n",
				info.OriginalName, info.ID, humanize.Bytes(uint64(info.Size)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&uploadedBy, "user", "u", "", "Uploader label")
	cmd.Flags().StringVarP(&description, "description", "d", "", "File description")
	cmd.Flags().StringVarP(&tags, "tags", "t", "", "Comma-separated tags")

	return cmd
}

func NewFilesStatsCommand(server *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show storage statistics",
		Long:  "Show aggregate statistics of all files stored on the server.",
		RunE: func(cmd *cobra.Command, args []string) error {
			depot := NewDepotClient(*server)

			stats, err := depot.Stats(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Total files: %d\n", stats.TotalFiles)
			fmt.Printf("Total size:  %s\n", humanize.Bytes(uint64(stats.TotalSizeBytes)))

			if len(stats.FileTypes) > 0 {
				fmt.Println("\nBy content type:")
				for _, ft := range stats.FileTypes {
					fmt.Printf("  %-60s %d\n", ft.Mimetype, ft.Count)
				}
			}

			if len(stats.RecentFiles) > 0 {
				fmt.Println("\nRecent uploads:")
				for _, rf := range stats.RecentFiles {
					fmt.Printf("  %s (%s, %s)\n",
						rf.OriginalName, humanize.Bytes(uint64(rf.Size)), humanize.Time(rf.CreatedAt))
				}
			}
			return nil
		},
	}

	return cmd
}

func NewFilesRemoveCommand(server *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a stored file",
		Long:  "Removes the file with the given identifier, both its content and its metadata.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			depot := NewDepotClient(*server)

			if err := depot.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Printf("Removed %s\n", args[0])
			return nil
		},
	}

	return cmd
}

// Listing is the response envelope of the list endpoint.
type Listing struct {
	Files      []files.FileInfo `json:"files"`
	Pagination struct {
		Current    int   `json:"current"`
		Total      int64 `json:"total"`
		Count      int   `json:"count"`
		TotalFiles int64 `json:"totalFiles"`
	} `json:"pagination"`
}
