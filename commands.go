package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	log "github.com/sirupsen/logrus"

	"sar-stac/catalog"
	"sar-stac/previewserver"
	"sar-stac/relocate"
	"sar-stac/util"
)

type app struct {
	configFile string
	cfg        *util.Config
	fs         afero.Fs
}

func rootCmd() *cobra.Command {
	a := &app{fs: afero.NewOsFs()}

	root := &cobra.Command{
		Use:           "sar-stac",
		Short:         "Organize SAR product folders by satellite and catalog them as STAC",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := util.LoadConfig(a.configFile)
			if err != nil {
				return err
			}
			cfg.ConfigureLogging()
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "",
		"YAML config file (default $CONFIG_FILE or ./config.yaml)")

	root.AddCommand(
		&cobra.Command{
			Use:   "relocate",
			Short: "Move product folders into a tree partitioned by satellite",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := a.relocate()
				return err
			},
		},
		&cobra.Command{
			Use:   "catalog",
			Short: "Build the STAC catalog from the organized tree",
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.buildCatalog()
			},
		},
		&cobra.Command{
			Use:   "run",
			Short: "Relocate, then build the catalog",
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := a.relocate(); err != nil {
					return err
				}
				return a.buildCatalog()
			},
		},
		&cobra.Command{
			Use:   "serve",
			Short: "Serve the organized images and the saved catalog locally",
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.serve(cmd)
			},
		},
	)
	return root
}

func (a *app) relocate() (relocate.Result, error) {
	return relocate.New(a.fs).Relocate(a.cfg.SourceDir, a.cfg.DestinationDir)
}

func (a *app) buildCatalog() error {
	cat := catalog.New(a.cfg.CatalogID, a.cfg.CatalogDescription)
	asm := &catalog.Assembler{
		Fs:            a.fs,
		Root:          a.cfg.DestinationDir,
		ImagesURL:     a.cfg.ImagesURL(),
		ProductFilter: a.cfg.ProductFilter,
	}
	if _, err := asm.Assemble(cat); err != nil {
		return fmt.Errorf("assemble %s: %w", a.cfg.DestinationDir, err)
	}
	return catalog.Save(a.fs, cat, a.cfg.CatalogDir)
}

func (a *app) serve(cmd *cobra.Command) error {
	cat, err := catalog.Read(a.fs, a.cfg.CatalogDir)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	srv, err := previewserver.New(a.fs, cat, previewserver.Options{
		RootURL:       a.cfg.RootURL,
		ImagesPrefix:  a.cfg.ImagesPrefix,
		ImagesDir:     a.cfg.DestinationDir,
		CatalogDir:    a.cfg.CatalogDir,
		CatalogPrefix: filepath.Base(filepath.Clean(a.cfg.CatalogDir)),
	})
	if err != nil {
		return err
	}
	log.Infof("Images from %q, catalog from %q", a.cfg.DestinationDir, a.cfg.CatalogDir)
	return srv.ListenAndServe(cmd.Context(), a.cfg.Port)
}
