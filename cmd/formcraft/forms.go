package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shubham-ralli/form-b/internal/models"
	"github.com/shubham-ralli/form-b/internal/optimistic"
)

func newFormsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forms",
		Short: "List and manage your forms",
	}
	cmd.AddCommand(newFormsListCmd(), newFormsCreateCmd(), newFormsToggleCmd(), newFormsDeleteCmd())
	return cmd
}

func newFormsListCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List forms, from the local cache while it is fresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			if force {
				s.forms.Refresh(cmd.Context(), true)
			} else {
				s.forms.Load(cmd.Context())
			}
			if err := s.forms.Err(); err != nil {
				if !s.forms.Retained() {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: showing last known forms: %v\n", err)
			}
			printForms(cmd.OutOrStdout(), s.forms.Forms())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "refresh from the server even if the cache is fresh")
	return cmd
}

func printForms(w io.Writer, forms []models.Form) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tACTIVE\tSUBMISSIONS\tUPDATED")
	for _, f := range forms {
		fmt.Fprintf(tw, "%s\t%s\t%v\t%d\t%s\n", f.ID, f.Title, f.IsActive, f.SubmissionCount, f.UpdatedAt)
	}
	tw.Flush()
}

func newFormsCreateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a form from a JSON definition",
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			var def map[string]any
			if err := json.NewDecoder(in).Decode(&def); err != nil {
				return fmt.Errorf("read form definition: %w", err)
			}
			s, err := openSession()
			if err != nil {
				return err
			}
			s.forms.Load(cmd.Context())
			form, err := s.client.CreateForm(cmd.Context(), def)
			if err != nil {
				return err
			}
			s.forms.Add(*form)
			fmt.Fprintf(cmd.OutOrStdout(), "Created form %s (%s)\n", form.ID, form.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON definition file, - for stdin")
	return cmd
}

func newFormsToggleCmd() *cobra.Command {
	var active bool
	cmd := &cobra.Command{
		Use:   "toggle FORM_ID",
		Short: "Activate or deactivate a form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			s, err := openSession()
			if err != nil {
				return err
			}
			s.forms.Load(cmd.Context())
			if !cmd.Flags().Changed("active") {
				current, ok := findForm(s.forms.Forms(), id)
				if !ok {
					return fmt.Errorf("form %s is not in your forms", id)
				}
				active = !current.IsActive
			}

			flag := optimistic.Swap[bool]{
				Get: func() bool {
					f, _ := findForm(s.forms.Forms(), id)
					return f.IsActive
				},
				Set: func(v bool) {
					s.forms.Update(id, models.FormPatch{IsActive: models.Bool(v)})
				},
			}
			err = flag.To(cmd.Context(), active, func(ctx context.Context) error {
				return s.client.SetStatus(ctx, id, active)
			})
			if err != nil {
				return err
			}
			state := "inactive"
			if active {
				state = "active"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Form %s is now %s\n", id, state)
			return nil
		},
	}
	cmd.Flags().BoolVar(&active, "active", true, "target state (default: flip the current state)")
	return cmd
}

func newFormsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete FORM_ID",
		Short: "Delete a form and its submissions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			s, err := openSession()
			if err != nil {
				return err
			}
			s.forms.Load(cmd.Context())
			at := formIndex(s.forms.Forms(), id)
			var removed models.Form
			if at >= 0 {
				removed = s.forms.Forms()[at]
			}
			err = optimistic.Do(cmd.Context(),
				func() { s.forms.Delete(id) },
				func(ctx context.Context) error { return s.client.DeleteForm(ctx, id) },
				func() {
					if at >= 0 {
						s.forms.Restore(at, removed)
					}
				},
			)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted form %s\n", id)
			return nil
		},
	}
}

func formIndex(forms []models.Form, id string) int {
	for i, f := range forms {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func findForm(forms []models.Form, id string) (models.Form, bool) {
	for _, f := range forms {
		if f.ID == id {
			return f, true
		}
	}
	return models.Form{}, false
}
