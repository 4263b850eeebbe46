package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/loopctl/internal/humanloop"
	"github.com/jackzampolin/loopctl/internal/output"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Render and register task UI templates",
	Long: `Render and register the task UI reviewers see.

Without --template the built-in template is used: it shows the task object
next to one input per extracted field.

Examples:
  loopctl template render                       # Preview the built-in template
  loopctl template render --template ui.html --payload sample.yaml
  loopctl template create --name invoice-ui     # Register the template`,
}

var (
	templatePath    string
	templatePayload string
	templateOut     string
	templateName    string
)

// templateFromFlags resolves the template content and name from flags and config.
func templateFromFlags(cmd *cobra.Command) (name, content string, err error) {
	cfg := services(cmd).Config.Get()
	path := cfg.TaskUI.TemplatePath
	if templatePath != "" {
		path = templatePath
	}
	name = cfg.TaskUI.Name
	if templateName != "" {
		name = templateName
	}
	content, err = humanloop.LoadTemplate(path)
	return name, content, err
}

var templateRenderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a template against a sample payload",
	Long: `Render a template against a sample payload.

The service renders the template with the payload and the markup is written
to a local file for inspection (default: ~/.loopctl/rendered/).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := services(cmd)
		cfg := s.Config.Get()

		if err := cfg.Require("review.role_arn"); err != nil {
			return err
		}
		name, content, err := templateFromFlags(cmd)
		if err != nil {
			return err
		}

		payload, err := payloadFromFlag(cfg, templatePayload)
		if err != nil {
			return err
		}
		if err := payload.Validate(); err != nil {
			return err
		}

		rv, err := s.Review(ctx)
		if err != nil {
			return err
		}
		markup, err := rv.RenderTemplate(ctx, content, payload, cfg.Review.RoleARN)
		if err != nil {
			return err
		}

		out := templateOut
		if out == "" {
			if err := s.Home.EnsureExists(); err != nil {
				return err
			}
			out = s.Home.RenderedFile(name, time.Now())
		}
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(out, []byte(markup), 0o644); err != nil {
			return fmt.Errorf("failed to write rendered template: %w", err)
		}

		return output.Print(map[string]string{"rendered_file": out})
	},
}

var templateCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a task UI template",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name, content, err := templateFromFlags(cmd)
		if err != nil {
			return err
		}

		rv, err := services(cmd).Review(ctx)
		if err != nil {
			return err
		}
		arn, err := rv.CreateTaskUI(ctx, name, content)
		if err != nil {
			return err
		}

		return output.Print(map[string]string{"name": name, "task_ui_arn": arn})
	},
}

func init() {
	templateCmd.PersistentFlags().StringVar(&templatePath, "template", "", "template file (default: task_ui.template_path or built-in)")
	templateCmd.PersistentFlags().StringVar(&templateName, "name", "", "template name (default: task_ui.name)")

	templateRenderCmd.Flags().StringVar(&templatePayload, "payload", "", "payload file, JSON or YAML (default: loop.payload_path or built-in sample)")
	templateRenderCmd.Flags().StringVar(&templateOut, "out", "", "where to write the rendered markup")

	templateCmd.AddCommand(templateRenderCmd)
	templateCmd.AddCommand(templateCreateCmd)

	rootCmd.AddCommand(templateCmd)
}
