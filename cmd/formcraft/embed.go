package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shubham-ralli/form-b/internal/embed"
)

func newEmbedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Render embedded forms headlessly",
	}
	cmd.AddCommand(newEmbedRenderCmd(), newEmbedScanCmd())
	return cmd
}

func newEmbedRenderCmd() *cobra.Command {
	var (
		pageSrc   string
		container string
		fills     []string
		submit    bool
	)
	cmd := &cobra.Command{
		Use:   "render FORM_ID",
		Short: "Render a form into a page and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := loadPage(cmd, pageSrc, args[0], container)
			if err != nil {
				return err
			}
			r := renderer()
			state := r.Render(cmd.Context(), page, args[0], container)
			fmt.Fprintf(cmd.ErrOrStderr(), "render: %s\n", state)
			if submit && state == embed.StateForm {
				for _, f := range fills {
					name, value, ok := strings.Cut(f, "=")
					if !ok {
						return fmt.Errorf("--fill %q: want name=value", f)
					}
					if err := page.Fill(container, name, strings.Split(value, ",")...); err != nil {
						return err
					}
				}
				if r.Submit(cmd.Context(), page, container) {
					fmt.Fprintln(cmd.ErrOrStderr(), "submit: accepted")
				} else {
					fmt.Fprintln(cmd.ErrOrStderr(), "submit: failed")
				}
				if to := page.NavigatedTo(); to != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "navigate: %s\n", to)
					return nil
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), page.HTML())
			return nil
		},
	}
	cmd.Flags().StringVar(&pageSrc, "page", "", "hosting page file or URL (default: a blank page)")
	cmd.Flags().StringVar(&container, "container", "formcraft", "container element id")
	cmd.Flags().StringArrayVar(&fills, "fill", nil, "name=value to enter before submitting; commas give several values")
	cmd.Flags().BoolVar(&submit, "submit", false, "submit the rendered form")
	return cmd
}

func newEmbedScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan PAGE",
		Short: "Render every data-formcraft-id container of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := loadPage(cmd, args[0], "", "")
			if err != nil {
				return err
			}
			states := renderer().AutoInit(cmd.Context(), page)
			ids := make([]string, 0, len(states))
			for id := range states {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, states[id])
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "no embeds found")
			}
			return nil
		},
	}
}

func renderer() *embed.Renderer {
	return &embed.Renderer{BaseURL: viper.GetString("api_url")}
}

// loadPage reads the hosting page from a URL or file. Without a source it
// builds a blank page holding one container for formID.
func loadPage(cmd *cobra.Command, src, formID, container string) (*embed.Page, error) {
	if src == "" {
		doc := fmt.Sprintf(`<!DOCTYPE html><html><body><div id=%q data-formcraft-id=%q></div></body></html>`, container, formID)
		return embed.ParsePage(strings.NewReader(doc), "")
	}
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, src, nil)
		if err != nil {
			return nil, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch page: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch page: %s", resp.Status)
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
		if err != nil {
			return nil, fmt.Errorf("fetch page: %w", err)
		}
		return embed.ParsePage(bytes.NewReader(body), resp.Request.URL.String())
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(src)
	if err != nil {
		abs = src
	}
	return embed.ParsePage(bytes.NewReader(data), "file://"+filepath.ToSlash(abs))
}
