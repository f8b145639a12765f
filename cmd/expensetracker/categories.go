package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"expensetracker/internal/cli"
	"expensetracker/internal/core"
)

// defaultCategoryColor is the brown used for categories added without a
// color.
const defaultCategoryColor = 0xFF795548

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage categories",
		Long:  `List, add and delete the categories transactions are filed under.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories, custom ones first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := cli.OpenApp(cmd.Context(), cli.AppOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			cats, err := a.Categories.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(cats) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No categories found. Use 'expensetracker seed' to add the defaults.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tName\tIcon\tColor\tCustom")
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 4),
				strings.Repeat("-", 20),
				strings.Repeat("-", 12),
				strings.Repeat("-", 9),
				strings.Repeat("-", 6))
			for _, c := range cats {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", c.ID, c.Name, core.ResolveIcon(c.IconRef), c.Color.Hex(), c.IsCustom)
			}
			return w.Flush()
		},
	}
}

func addCategoryCmd() *cobra.Command {
	var icon, color string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a custom category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if err := core.ValidateCategoryName(name); err != nil {
				return err
			}
			c := core.PackARGB(defaultCategoryColor)
			if color != "" {
				parsed, err := core.ParseColor(color)
				if err != nil {
					return err
				}
				c = parsed
			}

			a, err := cli.OpenApp(cmd.Context(), cli.AppOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			cat, err := a.Categories.Add(cmd.Context(), name, icon, c)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added category %d: %s\n", cat.ID, cat.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&icon, "icon", core.FallbackIcon, "icon key")
	cmd.Flags().StringVar(&color, "color", "", "color as #RRGGBB or #AARRGGBB")
	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Long: `Delete a category by ID. Transactions filed under it are kept but no longer
appear in listings and statistics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid category ID: %w", err)
			}

			a, err := cli.OpenApp(cmd.Context(), cli.AppOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			c, ok, err := a.Categories.ByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("category %d not found", id)
			}
			if err := a.Categories.Delete(cmd.Context(), c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %d: %s\n", c.ID, c.Name)
			return nil
		},
	}
}
