// Command solver is the CLI entry point (spec §6): it reads an input JSON
// problem, runs the construct+local-search core across nb_searches seeds in
// parallel, and writes the best solution's output JSON.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"tourforge/internal/assembly"
	"tourforge/internal/cli"
	"tourforge/internal/compat"
	"tourforge/internal/construct"
	"tourforge/internal/eta"
	"tourforge/internal/jsonio"
	"tourforge/internal/ls"
	"tourforge/internal/matrixio"
	"tourforge/internal/model"
	"tourforge/internal/route"
	"tourforge/internal/solverr"
)

func main() {
	os.Exit(run())
}

type flags struct {
	input       string
	output      string
	level       int   // -x, exploration level 0..5
	nbThreads   int   // -t
	timeoutMS   int64 // -l
	check       bool  // -c, check mode
	geometry    bool  // -g
	router      string
	hostsFile   string
	port        int
}

func parseFlags() flags {
	var f flags
	pflag.StringVarP(&f.input, "input", "i", "", "input JSON file (stdin if empty)")
	pflag.StringVarP(&f.output, "output", "o", "", "output JSON file (stdout if empty)")
	pflag.IntVarP(&f.level, "exploration", "x", 4, "exploration level 0..5, drives nb_searches and depth")
	pflag.IntVarP(&f.nbThreads, "threads", "t", 4, "number of seeds to run concurrently")
	pflag.Int64VarP(&f.timeoutMS, "timeout", "l", 5000, "solve timeout in milliseconds; the ruin-and-recreate loop runs until this deadline")
	pflag.BoolVarP(&f.check, "check", "c", false, "check mode: validate a user-fixed step sequence instead of solving")
	pflag.BoolVarP(&f.geometry, "geometry", "g", false, "request polyline geometry; no coordinate lookup is passed to the encoder, so routes carry no geometry")
	pflag.StringVarP(&f.router, "router", "r", "", "external matrix router: osrm, ors, valhalla, libosrm")
	pflag.StringVarP(&f.hostsFile, "hosts", "a", "", "YAML file of per-profile router host overrides")
	pflag.IntVarP(&f.port, "port", "p", 0, "default router port override, applied to every profile without its own entry")
	pflag.Parse()
	return f
}

// explorationLevel maps spec §6's EXPLORATION_LEVEL to (nb_searches, depth),
// mirroring the original's step function: a level≥4 bump, and a further
// bump at the max level (5).
func explorationLevel(level int) (nbSearches, depth int) {
	if level < 0 {
		level = 0
	}
	if level > 5 {
		level = 5
	}
	nbSearches = 4 * (level + 1)
	if level >= 4 {
		nbSearches += 4
	}
	if level == 5 {
		nbSearches += 4
	}
	return nbSearches, level
}

func run() int {
	f := parseFlags()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	in, err := os.Stdin, error(nil)
	var inFile *os.File
	if f.input != "" {
		inFile, err = os.Open(f.input)
		if err != nil {
			return fail(f, solverr.Wrap(solverr.KindInput, "opening input file", err))
		}
		defer inFile.Close()
		in = inFile
	}

	hosts, err := cli.LoadRouterHosts(f.hostsFile)
	if err != nil {
		return fail(f, solverr.Wrap(solverr.KindInput, "loading router hosts file", err))
	}
	if f.port != 0 {
		if _, ok := hosts[""]; !ok {
			hosts[""] = matrixio.HostPort{Host: "localhost", Port: f.port}
		}
	}

	loadStart := time.Now()
	input, err := jsonio.Decode(ctx, in, jsonio.Options{
		Router:      matrixio.Router(f.router),
		RouterHosts: hosts,
	})
	if err != nil {
		return fail(f, err)
	}
	loadMS := time.Since(loadStart).Milliseconds()

	nbSearches, depth := explorationLevel(f.level)
	input.Options.NbSearches = nbSearches
	input.Options.Depth = depth
	input.Options.NbThreads = f.nbThreads
	input.Options.Geometry = f.geometry

	if f.check {
		return runCheck(f, input)
	}

	remainingMS := f.timeoutMS
	if remainingMS > 0 {
		remainingMS -= loadMS
		if remainingMS < 0 {
			remainingMS = 0
		}
	}

	solveStart := time.Now()
	sol, serr := solve(ctx, input, remainingMS, nbSearches, depth, f.nbThreads)
	if serr != nil {
		return fail(f, serr)
	}
	solveMS := time.Since(solveStart).Milliseconds()

	return writeOutput(f, input, sol, jsonio.Times{LoadingMS: loadMS, SolvingMS: solveMS})
}

// solve runs the construct+local-search core across nbSearches seeds, with
// at most nbThreads seeds in flight at once (spec §5 Concurrency model:
// parallelism grain is seeds, on a work-queue of size min(nb_threads,
// nb_searches)), and returns the lexicographically best result (spec §4.9).
func solve(ctx context.Context, in *model.Input, timeoutMS int64, nbSearches, depth, nbThreads int) (model.Solution, *solverr.Error) {
	ct := compat.Build(in)

	type seedResult struct {
		routes     []*route.TWRoute
		unassigned map[int]struct{}
		indicators model.Indicators
	}

	results := make([]*seedResult, nbSearches)
	g, gctx := errgroup.WithContext(ctx)

	searchCtx := gctx
	var cancel context.CancelFunc
	if timeoutMS > 0 {
		searchCtx, cancel = context.WithTimeout(gctx, time.Duration(timeoutMS)*time.Millisecond)
		defer cancel()
	}

	// work-queue of size min(nb_threads, nb_searches), per spec §5.
	if nbThreads < 1 {
		nbThreads = 1
	}
	sem := make(chan struct{}, nbThreads)

	for s := 0; s < nbSearches; s++ {
		seed := s
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			params := construct.ParamsForSeed(seed)
			built := construct.Run(in, ct, params)

			runID := uuid.New().String()
			engine := ls.New(in, ct)
			routes, unassigned := engine.Run(searchCtx, built.Routes, built.Unassigned, depth, int64(seed))

			indicators := ls.Indicators(in, routes, unassigned)
			log.Printf("[SOLVE] run=%s seed=%d indicators=%+v", runID, seed, indicators)
			results[seed] = &seedResult{
				routes:     routes,
				unassigned: unassigned,
				indicators: indicators,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.Solution{}, solverr.Wrap(solverr.KindInternal, "running local search", err)
	}

	best := -1
	for i, r := range results {
		if r == nil {
			continue
		}
		if best == -1 || r.indicators.Less(results[best].indicators) {
			best = i
		}
	}
	if best == -1 {
		return model.Solution{}, solverr.New(solverr.KindInternal, "no search produced a result")
	}

	log.Printf("[SOLVE] ran %d searches at depth %d, best indicators=%+v", nbSearches, depth, results[best].indicators)
	sol := assembly.Build(in, results[best].routes, results[best].unassigned)
	return sol, nil
}

func fail(f flags, err error) int {
	se, ok := solverr.As(err)
	if !ok {
		se = solverr.New(solverr.KindInternal, err.Error())
	}
	log.Printf("[CLI] error: %v", se)
	out := os.Stdout
	if f.output != "" {
		if fh, oerr := os.Create(f.output); oerr == nil {
			defer fh.Close()
			out = fh
		}
	}
	_ = jsonio.EncodeError(out, se)
	return se.Kind.ExitCode()
}

func writeOutput(f flags, in *model.Input, sol model.Solution, times jsonio.Times) int {
	out := os.Stdout
	if f.output != "" {
		fh, err := os.Create(f.output)
		if err != nil {
			return fail(f, solverr.Wrap(solverr.KindInternal, "creating output file", err))
		}
		defer fh.Close()
		out = fh
	}
	if err := jsonio.Encode(out, in, sol, f.geometry, nil, times); err != nil {
		return fail(f, solverr.Wrap(solverr.KindInternal, "encoding output JSON", err))
	}
	return 0
}

func runCheck(f flags, in *model.Input) int {
	var outcomes []eta.Result
	for v := range in.Vehicles {
		if len(in.Vehicle(v).InitialSteps) == 0 {
			continue
		}
		outcomes = append(outcomes, eta.Validate(in, v))
	}
	for _, o := range outcomes {
		if o.Infeasible != nil {
			return fail(f, solverr.New(solverr.KindInfeasibility, o.Infeasible.Error()))
		}
	}

	sol := model.Solution{}
	sol.Summary.Delivery = in.ZeroAmount()
	sol.Summary.Pickup = in.ZeroAmount()
	for _, o := range outcomes {
		rr := *o.Route
		sol.Routes = append(sol.Routes, rr)
		sol.Summary.Cost += rr.Cost
		sol.Summary.Distance += rr.Distance
		sol.Summary.Duration += rr.Duration
		sol.Summary.Setup += rr.Setup
		sol.Summary.Service += rr.Service
		sol.Summary.WaitingTime += rr.WaitingTime
		sol.Summary.Priority += rr.Priority
		sol.Summary.Delivery = sol.Summary.Delivery.Add(rr.Delivery)
		sol.Summary.Pickup = sol.Summary.Pickup.Add(rr.Pickup)
		sol.Summary.Routes++
	}
	sol.Summary.Unassigned = len(sol.Unassigned)
	return writeOutput(f, in, sol, jsonio.Times{})
}
