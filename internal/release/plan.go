package release

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danmuck/pubctl/internal/graph"
	"github.com/danmuck/pubctl/internal/manifest"
)

var ErrMissingVersion = errors.New("release: missing project version")

// Plan is the fixed outcome of the read-only phase.
type Plan struct {
	Index    *manifest.Index
	Graph    *graph.Graph
	Affected graph.Set
	Unknown  []string
	// Order holds declared package names, dependencies first.
	Order []string
}

func (p Plan) Empty() bool { return len(p.Order) == 0 }

// Plan loads manifests, builds the graph and computes the publish order for
// seeds. It has no side effects.
func (o *Orchestrator) Plan(seeds []string) (Plan, error) {
	var plan Plan
	if len(seeds) == 0 {
		o.log.Info().Msg("No packages specified for publishing. Exiting.")
		return plan, nil
	}

	idx, err := manifest.LoadIndex(o.cfg.Root, manifest.Options{
		DirPrefix:    o.cfg.PackagePrefix,
		ManifestName: o.cfg.ManifestName,
	})
	if err != nil {
		return plan, err
	}
	plan.Index = idx

	nodes := make([]graph.Node, 0, idx.Len())
	for _, pkg := range idx.Packages() {
		nodes = append(nodes, graph.Node{
			Name:      pkg.Name(),
			LocalDeps: pkg.Doc.Manifest().LocalDependencies(),
		})
	}
	g, err := graph.New(nodes)
	if err != nil {
		return plan, err
	}
	plan.Graph = g
	for pkg, deps := range g.Ignored() {
		o.log.Debug().
			Str("package", pkg).
			Strs("dependencies", deps).
			Msg("local dependencies outside the release root ignored")
	}

	plan.Affected, plan.Unknown = g.Affected(seeds)
	for _, seed := range plan.Unknown {
		o.log.Warn().Str("seed", seed).Msgf("Warning: Specified package '%s' not found. Skipping.", seed)
	}
	if len(plan.Affected) == 0 {
		o.log.Info().Msg("No packages to publish after analyzing dependencies.")
		return plan, nil
	}

	order, err := g.Order()
	if err != nil {
		return plan, err
	}
	plan.Order = graph.Filter(order, plan.Affected)
	if plan.Empty() {
		o.log.Info().Msg("No packages to publish after filtering and sorting.")
		return plan, nil
	}

	var missing []string
	for _, name := range plan.Order {
		pkg, _ := idx.Lookup(name)
		if pkg.Version() == "" {
			missing = append(missing, pkg.Dir)
		}
	}
	if len(missing) > 0 {
		return plan, fmt.Errorf("%w: %s", ErrMissingVersion, strings.Join(missing, ", "))
	}
	return plan, nil
}
