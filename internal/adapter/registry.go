package adapter

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/amishk599/stagescout/internal/model"
)

// Source type tags.
const (
	SourceGreenhouse      = "greenhouse"
	SourceLever           = "lever"
	SourceAshby           = "ashby"
	SourceSmartRecruiters = "smartrecruiters"
	SourceRecruitee       = "recruitee"
	SourceTeamtailor      = "teamtailor"
	SourcePersonio        = "personio"
	SourceBambooHR        = "bamboohr"
	SourceWorkable        = "workable"
	SourceWorkday         = "workday"
	SourceGem             = "gem"
	SourceMicrosoft       = "microsoft"
)

const defaultMicrosoftLocation = "France"

// Deps are the collaborators handed to every strategy constructor.
type Deps struct {
	Client *http.Client
	Logger *slog.Logger
}

// Constructor builds a strategy for one configured source.
type Constructor func(id model.Identifier, company string, deps Deps) (model.JobDiscoverer, error)

// Registry maps a source type tag to its strategy constructor.
var Registry = map[string]Constructor{
	SourceGreenhouse: scalar(func(slug, company string, d Deps) model.JobDiscoverer {
		return NewGreenhouseAdapter(slug, company, d.Client)
	}),
	SourceLever: scalar(func(slug, company string, d Deps) model.JobDiscoverer {
		return NewLeverAdapter(slug, company, d.Client)
	}),
	SourceAshby: scalar(func(slug, company string, d Deps) model.JobDiscoverer {
		return NewAshbyAdapter(slug, company, d.Client)
	}),
	SourceSmartRecruiters: scalar(func(slug, company string, d Deps) model.JobDiscoverer {
		return NewSmartRecruitersAdapter(slug, company, d.Client, d.Logger)
	}),
	SourceRecruitee: scalar(func(slug, company string, d Deps) model.JobDiscoverer {
		return NewRecruiteeAdapter(slug, company, d.Client)
	}),
	SourceTeamtailor: scalar(func(slug, company string, d Deps) model.JobDiscoverer {
		return NewTeamtailorAdapter(slug, company, d.Client)
	}),
	SourcePersonio: scalar(func(slug, company string, d Deps) model.JobDiscoverer {
		return NewPersonioAdapter(slug, company, d.Client, d.Logger)
	}),
	SourceBambooHR: scalar(func(slug, company string, d Deps) model.JobDiscoverer {
		return NewBambooHRAdapter(slug, company, d.Client)
	}),
	SourceWorkable: scalar(func(slug, company string, d Deps) model.JobDiscoverer {
		return NewWorkableAdapter(slug, company, d.Client, d.Logger)
	}),
	SourceGem: scalar(func(slug, company string, d Deps) model.JobDiscoverer {
		return NewGemAdapter(slug, company, d.Client)
	}),
	SourceWorkday:   newWorkday,
	SourceMicrosoft: newMicrosoft,
}

// New resolves typ in the Registry and builds its strategy.
func New(typ string, id model.Identifier, company string, deps Deps) (model.JobDiscoverer, error) {
	build, ok := Registry[strings.ToLower(strings.TrimSpace(typ))]
	if !ok {
		return nil, fmt.Errorf("unknown source type %q", typ)
	}
	if deps.Client == nil {
		deps.Client = NewHTTPClient(DefaultTimeout, DefaultUserAgent, nil)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return build(id, company, deps)
}

// Types returns the registered type tags, sorted.
func Types() []string {
	types := make([]string, 0, len(Registry))
	for t := range Registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// scalar wraps a constructor whose identifier is a single slug.
func scalar(build func(slug, company string, d Deps) model.JobDiscoverer) Constructor {
	return func(id model.Identifier, company string, d Deps) (model.JobDiscoverer, error) {
		slug := strings.TrimSpace(id.Value)
		if id.IsComposite() || slug == "" {
			return nil, fmt.Errorf("%w: expected a slug, got %q", model.ErrInvalidIdentifier, id.String())
		}
		return build(slug, company, d), nil
	}
}

func newWorkday(id model.Identifier, company string, d Deps) (model.JobDiscoverer, error) {
	tenant, site := id.Part("tenant"), id.Part("site")
	if !id.IsComposite() || tenant == "" || site == "" {
		return nil, fmt.Errorf("%w: workday requires {tenant, site}, got %q", model.ErrInvalidIdentifier, id.String())
	}
	return NewWorkdayAdapter(tenant, site, company, d.Client, d.Logger), nil
}

func newMicrosoft(id model.Identifier, company string, d Deps) (model.JobDiscoverer, error) {
	query := id.Part("query")
	if !id.IsComposite() || query == "" {
		return nil, fmt.Errorf("%w: microsoft requires {query, location}, got %q", model.ErrInvalidIdentifier, id.String())
	}
	location := id.Part("location")
	if location == "" {
		location = defaultMicrosoftLocation
	}
	return NewMicrosoftAdapter(query, location, company, d.Client, d.Logger), nil
}

// sequence adapts a single-request fetch into a lazy sequence. The fetch
// runs when iteration starts; its error is yielded once and ends the
// sequence.
func sequence(ctx context.Context, fetch func(context.Context) ([]model.Job, error)) iter.Seq2[model.Job, error] {
	return func(yield func(model.Job, error) bool) {
		jobs, err := fetch(ctx)
		if err != nil {
			yield(model.Job{}, err)
			return
		}
		for _, j := range jobs {
			if !yield(j, nil) {
				return
			}
		}
	}
}
