package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"godoe/adapters/api"
	"godoe/adapters/excel"
	"godoe/app"
	"godoe/domain/design"
	"godoe/internal/testkit"

	"github.com/spf13/cobra"
)

func newInitCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "init [campaign.yaml]",
		Short: "Register a campaign from its campaign file",
		Long: `Register a campaign. Without an argument the file named by CAMPAIGN_FILE
(default campaign.yaml) is used.

Example: doe init bake.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := env.cfg.Paths.CampaignFile
			if len(args) == 1 {
				path = args[0]
			}
			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read campaign file: %w", err)
			}
			info, err := env.service.CreateCampaign(cmd.Context(), raw)
			if err != nil {
				return err
			}
			fmt.Fprintf(env.out, "campaign %s created (%s, phase %s)\n", info.ID, info.Name, info.Phase)
			return nil
		},
	}
}

func newListCmd(env *cliEnv) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List campaigns, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := env.service.ListCampaigns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, r := range recs {
				fmt.Fprintf(env.out, "%s  %-20s %-14s %-12s %s\n", r.ID, r.Name, r.DesignType, r.Phase,
					r.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of campaigns (0 for all)")
	return cmd
}

func newStatusCmd(env *cliEnv) *cobra.Command {
	var stateOut string
	cmd := &cobra.Command{
		Use:   "status [campaign-id]",
		Short: "Show a campaign's phase, factor ranges and best experiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			info, err := env.service.Campaign(cmd.Context(), id)
			if err != nil {
				return err
			}
			if stateOut != "" {
				if err := excel.NewDataWriter(stateOut, env.logger).WriteStateTable(info.Factors); err != nil {
					return err
				}
				fmt.Fprintf(env.out, "factor state written to %s\n", stateOut)
			}
			fmt.Fprintf(env.out, "campaign %s (%s) phase %s after %d iterations\n", info.ID, info.Name, info.Phase, info.Iterations)
			return env.printYAML(map[string]interface{}{
				"factors": info.Factors.Cells,
				"best":    info.Best,
			})
		},
	}
	cmd.Flags().StringVar(&stateOut, "state-out", "", "Also write the factor state table to this .xlsx or .csv file")
	return cmd
}

func newDesignCmd(env *cliEnv) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "design [campaign-id]",
		Short: "Generate the next design sheet to run",
		Long: `Generate the design for the campaign's current phase and write it with
empty response columns to fill in.

Example: doe design 0190c1d2-... --out runs.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			sheet, err := env.service.NextDesign(cmd.Context(), id)
			if err != nil {
				return err
			}
			info, err := env.service.Campaign(cmd.Context(), id)
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("%s/design-%s.xlsx", env.cfg.Paths.WorkDir, info.Phase)
			}
			if err := excel.NewDataWriter(out, env.logger).WriteSheet(sheet, info.Responses...); err != nil {
				return err
			}
			fmt.Fprintf(env.out, "%s design with %d runs written to %s\n", info.Phase, sheet.Rows(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output .xlsx or .csv file (default <workdir>/design-<phase>.xlsx)")
	return cmd
}

func newEvaluateCmd(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate [campaign-id] [filled-design]",
		Short: "Submit a filled design sheet and update the campaign",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			info, err := env.service.Campaign(cmd.Context(), id)
			if err != nil {
				return err
			}
			sheet, err := excel.NewDataReader(args[1], env.logger).ReadSheet(info.Categorical...)
			if err != nil {
				return err
			}
			_, responses, err := excel.Split(sheet, info.Factors.Factors, info.Responses)
			if err != nil {
				return err
			}
			outcome, err := env.service.SubmitResponses(cmd.Context(), id, responses)
			if err != nil {
				return err
			}
			printOutcome(env, outcome)
			return nil
		},
	}
	return cmd
}

func newBestCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "best [campaign-id]",
		Short: "Show the best experiment so far",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			info, err := env.service.Campaign(cmd.Context(), id)
			if err != nil {
				return err
			}
			if info.Best == nil {
				fmt.Fprintln(env.out, "no experiment evaluated yet")
				return nil
			}
			return env.printYAML(info.Best)
		},
	}
}

func newReevaluateCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "reevaluate [campaign-id]",
		Short: "Restart optimization from the next-best screening run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := env.service.ReevaluateScreening(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(env.out, "factor ranges recentred on screening run:")
			printSettings(env, res.PredictedOptimum)
			return nil
		},
	}
}

func newPhaseCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "phase [campaign-id] [screening|optimization]",
		Short: "Override a campaign's phase",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			phase, err := design.ParsePhase(args[1])
			if err != nil {
				return err
			}
			if err := env.service.SetPhase(cmd.Context(), id, phase); err != nil {
				return err
			}
			fmt.Fprintf(env.out, "campaign %s now in phase %s\n", id, phase)
			return nil
		},
	}
}

func newReportCmd(env *cliEnv) *cobra.Command {
	var htmlOut string
	cmd := &cobra.Command{
		Use:   "report [campaign-id]",
		Short: "Print a markdown report, or write it as HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			md, err := env.service.Report(cmd.Context(), id)
			if err != nil {
				return err
			}
			if htmlOut == "" {
				fmt.Fprint(env.out, md)
				return nil
			}
			if err := os.WriteFile(htmlOut, api.RenderHTML("Campaign report", md), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(env.out, "report written to %s\n", htmlOut)
			return nil
		},
	}
	cmd.Flags().StringVar(&htmlOut, "html", "", "Write the report as HTML to this file")
	return cmd
}

func newSimulateCmd(env *cliEnv) *cobra.Command {
	var (
		surfaceName  string
		campaignFile string
		noise        float64
		seed         int64
		maxIter      int
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a whole campaign against a synthetic response surface",
		Long: fmt.Sprintf(`Run design, measurement and evaluation in a loop against a synthetic
surface until the campaign converges. Surfaces: %v.

Example: doe simulate --surface bake --noise 0.1 --seed 7`, testkit.SurfaceNames()),
		RunE: func(cmd *cobra.Command, args []string) error {
			surface, err := testkit.Lookup(surfaceName)
			if err != nil {
				return err
			}
			req := app.SimulationRequest{
				Surface:       surface,
				Simulator:     testkit.SimulatorConfig{Noise: noise, Seed: seed},
				MaxIterations: maxIter,
			}
			if campaignFile != "" {
				if req.Campaign, err = os.ReadFile(campaignFile); err != nil {
					return fmt.Errorf("read campaign file: %w", err)
				}
			}
			res, err := env.service.Simulate(cmd.Context(), req)
			if err != nil {
				return err
			}
			for _, it := range res.Iterations {
				printOutcome(env, it)
			}
			fmt.Fprintln(env.out, res.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&surfaceName, "surface", "ridge", "Synthetic surface to optimize")
	cmd.Flags().StringVar(&campaignFile, "campaign", "", "Campaign file overriding the surface's own")
	cmd.Flags().Float64Var(&noise, "noise", 0, "Standard deviation of measurement noise")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for the measurement noise")
	cmd.Flags().IntVar(&maxIter, "max-iter", app.DefaultMaxIterations, "Iteration cap")
	return cmd
}

func newServeCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the campaign HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			server, err := env.container.Server()
			if err != nil {
				return err
			}
			return server.Start(ctx, ":"+env.cfg.Server.Port, env.cfg.Server.ShutdownTimeout)
		},
	}
}

func printOutcome(env *cliEnv, o *app.IterationOutcome) {
	fmt.Fprintf(env.out, "iteration %d (%s): converged=%t reached_limits=%t model=%t\n",
		o.Seq, o.Phase, o.Result.Converged, o.Result.ReachedLimits, o.ModelUsed)
	if !o.Result.PredictedOptimum.IsEmpty() {
		printSettings(env, o.Result.PredictedOptimum)
	}
	if o.Best != nil {
		fmt.Fprintf(env.out, "  best weighted response %g\n", o.Best.WeightedResponse)
	}
}

func printSettings(env *cliEnv, s design.Settings) {
	names := make([]string, 0, s.Len())
	for n := range s.Numeric {
		names = append(names, n)
	}
	for n := range s.Labels {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if v, ok := s.Numeric[n]; ok {
			fmt.Fprintf(env.out, "  %s = %g\n", n, v)
			continue
		}
		fmt.Fprintf(env.out, "  %s = %s\n", n, s.Labels[n])
	}
}
