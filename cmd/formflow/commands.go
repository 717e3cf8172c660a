package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/components/banks"
	"github.com/goliatone/go-formflow/internal/fill"
	"github.com/goliatone/go-formflow/internal/logging"
	"github.com/goliatone/go-formflow/pkg/catalog"
	"github.com/goliatone/go-formflow/pkg/form"
	pkgopenapi "github.com/goliatone/go-formflow/pkg/openapi"
)

var validateCmd = &cobra.Command{
	Use:   "validate <catalog-dir>",
	Short: "Validate every template document in a catalog directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := logging.New(logLevel)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		store, err := catalog.LoadFS(os.DirFS(args[0]))
		if err != nil {
			return err
		}
		for _, id := range store.IDs() {
			tpl, _ := store.Template(id)
			logger.Info("template ok",
				zap.String("id", tpl.ID),
				zap.String("category", tpl.Category),
				zap.Int("fields", len(tpl.Fields())),
			)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d templates valid\n", len(store.IDs()))
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list <catalog-dir>",
	Short: "List the templates in a catalog directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := catalog.LoadFS(os.DirFS(args[0]))
		if err != nil {
			return err
		}
		for _, id := range store.IDs() {
			tpl, _ := store.Template(id)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", tpl.ID, tpl.Category, tpl.Name)
		}
		return nil
	},
}

var fillCmd = &cobra.Command{
	Use:   "fill <catalog-dir> <template-id>",
	Short: "Fill a template interactively and print the submission payload",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := catalog.LoadFS(os.DirFS(args[0]))
		if err != nil {
			return err
		}
		tpl, ok := store.Template(args[1])
		if !ok {
			return fmt.Errorf("template %q not found in %s", args[1], args[0])
		}

		f, err := form.New(tpl)
		if err != nil {
			return err
		}
		bankOptions, err := banks.DefaultOptions()
		if err != nil {
			return err
		}

		runner := &fill.Runner{
			Form:        f,
			Driver:      fill.NewSurveyDriver(),
			BankOptions: bankOptions,
		}
		snapshot, err := runner.Run(cmd.Context())
		if err != nil {
			return err
		}

		payload := map[string]any{
			"templateId":      snapshot.TemplateID,
			"templateVersion": snapshot.TemplateVersion,
			"fields":          snapshot.Fields,
		}
		if len(snapshot.Files) > 0 {
			files := make(map[string][]string, len(snapshot.Files))
			for fieldID, handles := range snapshot.Files {
				for _, h := range handles {
					files[fieldID] = append(files[fieldID], h.Name)
				}
			}
			payload["files"] = files
		}

		encoded, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <openapi-doc> <operation-id>",
	Short: "Derive a template draft from an OpenAPI operation",
	Long: `Reads an OpenAPI document and maps the named operation's request body
onto a template draft. Visibility conditions and cross-field rules are left
for the author to add.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		tpl, err := pkgopenapi.Import(cmd.Context(), raw, args[1])
		if err != nil {
			return err
		}
		encoded, err := yaml.Marshal(tpl)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(encoded))
		return nil
	},
}
