package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var assetsCmd = &cobra.Command{
	Use:   "assets [file-id] [page-name...]",
	Short: "List the frames of named pages",
	Long:  `Lists the frames of the named pages without checking the cache.`,
	Args:  cobra.MinimumNArgs(2),
	RunE:  runAssets,
}

var templatesCmd = &cobra.Command{
	Use:   "templates [file-id] [template-name...]",
	Short: "List templates and their asset groups",
	Long: `Groups assets from template-style pages. Pages named "Template/Group"
contribute one group each; pages named "Prefix/Template" index groups
held on other pages. Without names, every template is listed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTemplates,
}

var pagesCmd = &cobra.Command{
	Use:   "pages [file-id]",
	Short: "List the pages of a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runPages,
}

var fileVersionCmd = &cobra.Command{
	Use:   "file-version [file-id]",
	Short: "Print the upstream version of a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runFileVersion,
}

var urlCmd = &cobra.Command{
	Use:   "url [page-name] [asset-id]",
	Short: "Print the public URL of a cached asset",
	Args:  cobra.ExactArgs(2),
	RunE:  runURL,
}

func init() {
	urlCmd.Flags().String("file", "", "file id")
	urlCmd.Flags().Int("version", 0, "cache-busting version (0 = none)")

	rootCmd.AddCommand(assetsCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(pagesCmd)
	rootCmd.AddCommand(fileVersionCmd)
	rootCmd.AddCommand(urlCmd)
}

func runAssets(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}

	byPage, err := svc.Assets.Assets(cmd.Context(), args[0], args[1:])
	if err != nil {
		return err
	}

	for _, page := range args[1:] {
		assets, ok := byPage[page]
		if !ok {
			cmd.Printf("%s: not found\n", page)
			continue
		}
		cmd.Printf("%s (%d)\n", page, len(assets))
		for _, a := range assets {
			cmd.Printf("  %-12s %s\n", a.AssetID, a.AssetName)
		}
	}
	return nil
}

func runTemplates(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}

	templates, err := svc.Assets.Templates(cmd.Context(), args[0], args[1:])
	if err != nil {
		return err
	}

	for _, t := range templates {
		cmd.Println(t.Name)
		for _, g := range t.Groups {
			cmd.Printf("  %s (%d assets)\n", g.Name, len(g.Assets))
		}
	}
	return nil
}

func runPages(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}

	pages, err := svc.Assets.Pages(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	for _, p := range pages {
		cmd.Printf("%-12s %s\n", p.ID, p.Name)
	}
	return nil
}

func runFileVersion(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}

	v, err := svc.Assets.FileVersion(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	cmd.Println(v)
	return nil
}

func runURL(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}

	fileID, _ := cmd.Flags().GetString("file")
	v, _ := cmd.Flags().GetInt("version")
	if v < 0 {
		return fmt.Errorf("invalid version %d", v)
	}

	cmd.Println(svc.Assets.AssetURL(fileID, args[0], args[1], v))
	return nil
}
