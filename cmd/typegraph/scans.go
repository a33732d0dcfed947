package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/typegraph-io/typegraph/internal/cli/config"
	"github.com/typegraph-io/typegraph/internal/store"
	"github.com/typegraph-io/typegraph/scan"
)

var scansCmd = &cobra.Command{
	Use:   "scans",
	Short: "Manage persisted scan results",
}

func init() {
	scansCmd.AddCommand(scansListCmd)
	scansCmd.AddCommand(scansImportCmd)
	scansCmd.AddCommand(scansDeleteCmd)
}

func openStore() (*store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return store.Open(cfg.Store.Driver, config.GetStoreDSN(cfg), zap.NewNop())
}

var scansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted scan results",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := st.ListScans(cmd.Context())
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No scans stored.")
			return nil
		}

		color.New(color.Bold).Printf("%-38s %-21s %s\n", "ID", "GENERATED", "CLASSES")
		for _, rec := range records {
			fmt.Printf("%-38s %-21s %d\n",
				rec.ID, rec.Generated.Format("2006-01-02 15:04:05"), rec.ClassCount)
		}
		return nil
	},
}

var scansImportCmd = &cobra.Command{
	Use:   "import <result.json>",
	Short: "Import a scan result file into the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		result, err := scan.LoadResultJSON(data, nil)
		if err != nil {
			return fmt.Errorf("failed to load scan result: %w", err)
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Init(cmd.Context()); err != nil {
			return err
		}
		if err := st.SaveResult(cmd.Context(), result); err != nil {
			return err
		}

		fmt.Printf("Imported scan %s (%d classes)\n", result.ID(), result.Len())
		return nil
	},
}

var scansDeleteCmd = &cobra.Command{
	Use:   "delete <scan-id>",
	Short: "Delete a persisted scan result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.DeleteScan(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted scan %s\n", args[0])
		return nil
	},
}
