package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"nucoinc/adapters/api"
	"nucoinc/adapters/geometry"
	"nucoinc/adapters/loader"
	"nucoinc/adapters/skymap"
	"nucoinc/adapters/store"
	"nucoinc/domain/astro"
	"nucoinc/internal/config"
	"nucoinc/internal/effarea"
	"nucoinc/internal/farmatch"
	"nucoinc/internal/gw"
	"nucoinc/internal/likelihood"
	"nucoinc/internal/logging"
	"nucoinc/internal/neutrino"
	"nucoinc/ports"
)

func main() {
	// Optional .env; absence is fine.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "nucoinc",
		Short: "Likelihood statistics for neutrino / gravitational-wave coincidences",
	}
	rootCmd.AddCommand(
		newIngestCmd(),
		newScoreCmd(),
		newServeCmd(),
		newPSFCmd(),
	)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newIngestCmd() *cobra.Command {
	var aeffFile, eventsFile, catalogFile, pipelineFARFile, backgroundFARFile string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Parse raw detector and catalog files into the table store",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.NewFromEnv()
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			bundle := &astro.Bundle{
				EffectiveAreas: make(map[string][]astro.EffectiveAreaBin),
				Events:         make(map[string][]astro.Event),
			}

			bins, err := parseFile(aeffFile, loader.EffectiveArea)
			if err != nil {
				return err
			}
			bundle.EffectiveAreas[cfg.AeffTable] = bins

			events, err := parseFile(eventsFile, loader.Events)
			if err != nil {
				return err
			}
			bundle.Events[cfg.EventsTable] = events

			bundle.Catalog, err = parseFile(catalogFile, loader.Catalog)
			if err != nil {
				return err
			}
			bundle.PipelineFARsHz, err = parseFile(pipelineFARFile, loader.FARList)
			if err != nil {
				return err
			}
			bundle.BackgroundFARsHz, err = parseFile(backgroundFARFile, loader.FARList)
			if err != nil {
				return err
			}

			loader.LogSampleSummary(log, "pipeline FARs", bundle.PipelineFARsHz)
			loader.LogSampleSummary(log, "background FARs", bundle.BackgroundFARsHz)

			st, err := store.Open(cfg.StorePath)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Save(context.Background(), bundle); err != nil {
				return err
			}
			log.Info("ingested %d effective-area bins, %d events, %d catalog entries into %s",
				len(bins), len(events), len(bundle.Catalog), cfg.StorePath)
			return nil
		},
	}

	cmd.Flags().StringVar(&aeffFile, "aeff", "", "effective-area table file (required)")
	cmd.Flags().StringVar(&eventsFile, "events", "", "historical events CSV (required)")
	cmd.Flags().StringVar(&catalogFile, "catalog", "", "GW reference catalog CSV (required)")
	cmd.Flags().StringVar(&pipelineFARFile, "pipeline-fars", "", "pipeline FAR list (required)")
	cmd.Flags().StringVar(&backgroundFARFile, "background-fars", "", "background FAR list (required)")
	for _, f := range []string{"aeff", "events", "catalog", "pipeline-fars", "background-fars"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newScoreCmd() *cobra.Command {
	var pairFile string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one neutrino/GW candidate pair from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			combiner, _, err := buildCombiner()
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(pairFile)
			if err != nil {
				return err
			}
			var pair likelihood.CandidatePair
			if err := json.Unmarshal(raw, &pair); err != nil {
				return err
			}

			score, err := combiner.ScorePair(pair)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(score, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&pairFile, "pair", "", "JSON file with {neutrino, gw} (required)")
	_ = cmd.MarkFlagRequired("pair")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the scoring API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			combiner, cfg, err := buildCombiner()
			if err != nil {
				return err
			}
			log := logging.NewFromEnv()
			server := api.NewServer(combiner, log)
			log.Info("scoring server listening on :%s", cfg.HTTPPort)
			return http.ListenAndServe(":"+cfg.HTTPPort, server.Handler())
		},
	}
}

func newPSFCmd() *cobra.Command {
	var ra, dec, sigma float64
	var nRA, nDec int
	var outFile string

	cmd := &cobra.Command{
		Use:   "psf",
		Short: "Render a detection's point-spread function to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			var renderer ports.SkyMapper = skymap.NewRenderer(nRA, nDec)
			grid, err := renderer.RenderPSF(ra, dec, sigma)
			if err != nil {
				return err
			}
			f, err := os.Create(outFile)
			if err != nil {
				return err
			}
			defer f.Close()

			w := csv.NewWriter(f)
			defer w.Flush()
			if err := w.Write([]string{"ra_deg", "dec_deg", "density"}); err != nil {
				return err
			}
			for i, raPix := range grid.RADeg {
				for j, decPix := range grid.DecDeg {
					rec := []string{
						strconv.FormatFloat(raPix, 'g', -1, 64),
						strconv.FormatFloat(decPix, 'g', -1, 64),
						strconv.FormatFloat(grid.Values[i][j], 'g', -1, 64),
					}
					if err := w.Write(rec); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&ra, "ra", 180, "PSF center right ascension, deg")
	cmd.Flags().Float64Var(&dec, "dec", 0, "PSF center declination, deg")
	cmd.Flags().Float64Var(&sigma, "sigma", 1, "angular uncertainty, deg")
	cmd.Flags().IntVar(&nRA, "nra", 360, "grid pixels in RA")
	cmd.Flags().IntVar(&nDec, "ndec", 180, "grid pixels in declination")
	cmd.Flags().StringVar(&outFile, "out", "psf.csv", "output CSV path")
	return cmd
}

// buildCombiner loads the stored tables and wires the full scoring stack.
func buildCombiner() (*likelihood.Combiner, *config.Config, error) {
	log := logging.NewFromEnv()
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	params, err := cfg.Parameters()
	if err != nil {
		return nil, nil, err
	}

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return nil, nil, err
	}
	defer st.Close()
	bundle, err := st.Load(context.Background())
	if err != nil {
		return nil, nil, err
	}

	bins, ok := bundle.EffectiveAreas[cfg.AeffTable]
	if !ok {
		return nil, nil, fmt.Errorf("effective-area table %q not found in %s",
			cfg.AeffTable, filepath.Base(cfg.StorePath))
	}
	table, err := effarea.New(cfg.AeffTable, bins)
	if err != nil {
		return nil, nil, err
	}
	if err := table.Validate(); err != nil {
		return nil, nil, err
	}

	events, ok := bundle.Events[cfg.EventsTable]
	if !ok {
		return nil, nil, fmt.Errorf("events table %q not found in %s",
			cfg.EventsTable, filepath.Base(cfg.StorePath))
	}

	geom := geometry.NewMeeus(geometry.Site{
		LatitudeDeg:  cfg.ObserverLatDeg,
		LongitudeDeg: cfg.ObserverLonDeg,
	})
	matcher := farmatch.New(bundle.Catalog, geom, params.FARThresholdHz)

	nuModel, err := neutrino.NewModel(params, table, events)
	if err != nil {
		return nil, nil, err
	}
	gwModel, err := gw.NewModel(params, bundle.PipelineFARsHz, bundle.BackgroundFARsHz, matcher)
	if err != nil {
		return nil, nil, err
	}

	log.Debug("combiner wired: population=%s, %d catalog entries, %d events",
		params.Population, matcher.Size(), len(events))
	return likelihood.NewCombiner(params, nuModel, gwModel, matcher, geom), cfg, nil
}

func parseFile[T any](path string, parse func(r io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()
	return parse(f)
}
