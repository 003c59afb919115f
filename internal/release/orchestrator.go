package release

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/danmuck/pubctl/internal/config"
	"github.com/danmuck/pubctl/internal/manifest"
	"github.com/danmuck/pubctl/internal/observability"
	"github.com/danmuck/pubctl/internal/publish"
)

// Publisher publishes a single package.
type Publisher interface {
	Publish(target publish.Target) (publish.Result, error)
}

type Orchestrator struct {
	cfg       config.Config
	publisher Publisher
	updater   *manifest.Updater
	log       zerolog.Logger
}

// Report records what a run did, including on failure.
type Report struct {
	Published []string
	Skipped   []string
	// Updated maps a published package to the directories pinned to it.
	Updated map[string][]string
}

func New(cfg config.Config, publisher Publisher, logger zerolog.Logger) *Orchestrator {
	updater := manifest.NewUpdater(logger)
	updater.OnUpdate = func(pkg *manifest.Package, dependency string) {
		observability.RecordManifestUpdate(pkg.Name(), dependency)
	}
	return &Orchestrator{
		cfg:       cfg,
		publisher: publisher,
		updater:   updater,
		log:       logger,
	}
}

// Run plans and executes a release for seeds.
func (o *Orchestrator) Run(seeds []string) (Report, error) {
	plan, err := o.Plan(seeds)
	if err != nil {
		return Report{}, err
	}
	return o.Execute(plan)
}

// Execute publishes plan.Order one package at a time. After each real publish
// the dependents' manifests are pinned and written before the next package is
// started. An already-published package is skipped without pinning.
func (o *Orchestrator) Execute(plan Plan) (Report, error) {
	report := Report{Updated: make(map[string][]string)}
	if plan.Empty() {
		return report, nil
	}

	separator := strings.Repeat("-", 30)
	o.log.Info().Strs("order", plan.Order).Msg("Publishing order determined:")
	o.log.Info().Msg(" -> " + strings.Join(plan.Order, " -> "))
	o.log.Info().Msg(separator)

	for _, name := range plan.Order {
		pkg, _ := plan.Index.Lookup(name)
		o.log.Info().Str("package", name).Str("dir", pkg.Dir).Msgf("Publishing %s...", name)

		res, err := o.publisher.Publish(publish.Target{Name: name, Dir: pkg.Path})
		if err != nil {
			o.log.Error().Str("package", name).Msgf("Error publishing %s:", name)
			return report, err
		}

		if res.Outcome == publish.OutcomeAlreadyPublished {
			o.log.Info().Str("package", name).Msgf("%s version already published, skipping.", name)
			report.Skipped = append(report.Skipped, name)
			continue
		}

		o.log.Info().Str("package", name).Dur("took", res.Duration).Msgf("Successfully published %s", name)
		report.Published = append(report.Published, name)

		updated, err := o.updater.Apply(plan.Index, name, pkg.Version())
		if len(updated) > 0 {
			report.Updated[name] = updated
		}
		if err != nil {
			return report, err
		}
	}

	o.log.Info().Msg(separator)
	o.log.Info().Msg("All packages published successfully!")
	return report, nil
}
