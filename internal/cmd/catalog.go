package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/smartplan/internal/catalog"
	"github.com/felixgeelhaar/smartplan/internal/tui"
)

// loadCatalog reads the configured catalog, or the built-in one, and
// records the outcome.
func (a *app) loadCatalog() (*catalog.Catalog, error) {
	c, err := catalog.Load(a.cfg.Catalog.Path)
	if err != nil {
		a.metrics.RecordCatalog("", "", err)
		return nil, err
	}
	a.metrics.RecordCatalog(c.Version, c.Digest, nil)
	a.logger.Debug("Template catalog loaded", "source", c.Source, "version", c.Version, "digest", c.Digest)
	return c, nil
}

func (a *app) templatesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the plan templates in the catalog",
		Long: `List every category template with its keywords, base hours and steps,
followed by the phase tables of each planning domain.`,
		Example: `  smartplan templates
  smartplan templates --format yaml
  smartplan templates --catalog ./catalog.yaml`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = a.instrument("templates", func(cmd *cobra.Command, args []string) error {
		c, err := a.loadCatalog()
		if err != nil {
			return err
		}
		data := map[string]interface{}{
			"catalog_version":  c.Version,
			"categories":       c.Templates,
			"domain_templates": c.DomainTemplates,
		}
		return write(cmd, format, data, func(interface{}) (string, error) {
			return tui.RenderTemplates(c, styles()), nil
		})
	})
	addFormatFlag(cmd, &format)
	return cmd
}

func (a *app) domainsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "domains",
		Short: "List the supported planning domains",
		Example: `  smartplan domains
  smartplan domains --format json`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = a.instrument("domains", func(cmd *cobra.Command, args []string) error {
		c, err := a.loadCatalog()
		if err != nil {
			return err
		}
		return write(cmd, format, c.Domains, func(interface{}) (string, error) {
			if len(c.Domains) == 0 {
				return "", fmt.Errorf("catalog %s defines no domains", c.Source)
			}
			return tui.RenderDomains(c, styles()), nil
		})
	})
	addFormatFlag(cmd, &format)
	return cmd
}
