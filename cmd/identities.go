package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/quocbao/facegate/internal/config"
	"github.com/quocbao/facegate/internal/identity"
	"github.com/spf13/cobra"
)

var identitiesCmd = &cobra.Command{
	Use:   "identities",
	Short: "Manage the enrolled identity database",
}

var identitiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrolled identities",
	RunE:  runIdentitiesList,
}

var identitiesRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove an enrolled identity",
	Args:  cobra.ExactArgs(1),
	RunE:  runIdentitiesRemove,
}

func init() {
	rootCmd.AddCommand(identitiesCmd)
	identitiesCmd.AddCommand(identitiesListCmd)
	identitiesCmd.AddCommand(identitiesRemoveCmd)
}

func runIdentitiesList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	records, err := store.All(ctx)
	if err != nil {
		return fmt.Errorf("listing identities: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No identities enrolled yet")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDIM")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%d\n", rec.Name, len(rec.Embedding))
	}
	return w.Flush()
}

func runIdentitiesRemove(cmd *cobra.Command, args []string) error {
	name := args[0]
	cfg := config.Load()
	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Delete(ctx, name); err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return fmt.Errorf("identity %q is not enrolled", name)
		}
		return fmt.Errorf("removing identity %q: %w", name, err)
	}

	fmt.Printf("Removed %q\n", name)
	return nil
}
