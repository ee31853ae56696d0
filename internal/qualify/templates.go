package qualify

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// TemplatePack holds the question bank and call-offer copy. A pack loaded
// from YAML overrides the built-in defaults field by field.
type TemplatePack struct {
	Questions QuestionBank `yaml:"questions"`
	Offers    OfferPack    `yaml:"offers"`
}

// QuestionBank maps each qualification field to the question that elicits it.
type QuestionBank struct {
	Ownership       string `yaml:"ownership"`
	Budget          string `yaml:"budget"`
	BiggestProblem  string `yaml:"biggest_problem"`
	CPA             string `yaml:"cpa"`
	TrafficSource   string `yaml:"traffic_source"`
	UrgencyTimeline string `yaml:"urgency_timeline"`
	Competitors     string `yaml:"competitors"`
}

// OfferPack holds call-offer copy keyed by monthly ad-spend bracket, plus the
// high-CPA and generic fallbacks used when no bracket applies.
type OfferPack struct {
	SpendUnder500 string `yaml:"spend_under_500"`
	SpendTo2000   string `yaml:"spend_to_2000"`
	SpendTo5000   string `yaml:"spend_to_5000"`
	SpendOver5000 string `yaml:"spend_over_5000"`
	HighCPA       string `yaml:"high_cpa"`
	Generic       string `yaml:"generic"`
}

// DefaultTemplates returns the built-in template pack.
func DefaultTemplates() *TemplatePack {
	return &TemplatePack{
		Questions: QuestionBank{
			Ownership:       "Quick question before we dig in: are you the owner of the business, or do you handle marketing for someone else?",
			Budget:          "Roughly how much are you spending on ads each month right now?",
			BiggestProblem:  "What would you say is the biggest problem with your marketing at the moment?",
			CPA:             "Do you know what you currently pay to acquire a customer?",
			TrafficSource:   "Where do most of your customers come from today: ads, search, referrals?",
			UrgencyTimeline: "How soon are you looking to fix this: this month, this quarter, or just exploring?",
			Competitors:     "Are there competitors in your space whose marketing you wish you had?",
		},
		Offers: OfferPack{
			SpendUnder500: "At your current spend the fastest win is plugging leaks before scaling. A 15-minute call is usually enough to map that out. Want to grab a slot?",
			SpendTo2000:   "You are spending enough that small targeting fixes pay for themselves in weeks. Let's walk through your account on a short call.",
			SpendTo5000:   "At this budget level a restructure typically frees 20-30% of spend. Worth a proper strategy call: shall I send you times?",
			SpendOver5000: "Budgets like yours deserve a senior strategist, not a checklist. I can get you on a call with one this week.",
			HighCPA:       "That acquisition cost has a lot of room to come down. A quick audit call would show you exactly where.",
			Generic:       "Sounds like a call would be the fastest way to get you answers. Want me to set one up?",
		},
	}
}

// LoadTemplates reads a template pack from a YAML file, field-wise overriding
// the defaults so a pack only needs to specify what it changes.
func LoadTemplates(path string) (*TemplatePack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "qualify: read templates %s", path)
	}

	var pack TemplatePack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, eris.Wrap(err, "qualify: parse templates")
	}

	merged := DefaultTemplates()
	overrideString(&merged.Questions.Ownership, pack.Questions.Ownership)
	overrideString(&merged.Questions.Budget, pack.Questions.Budget)
	overrideString(&merged.Questions.BiggestProblem, pack.Questions.BiggestProblem)
	overrideString(&merged.Questions.CPA, pack.Questions.CPA)
	overrideString(&merged.Questions.TrafficSource, pack.Questions.TrafficSource)
	overrideString(&merged.Questions.UrgencyTimeline, pack.Questions.UrgencyTimeline)
	overrideString(&merged.Questions.Competitors, pack.Questions.Competitors)
	overrideString(&merged.Offers.SpendUnder500, pack.Offers.SpendUnder500)
	overrideString(&merged.Offers.SpendTo2000, pack.Offers.SpendTo2000)
	overrideString(&merged.Offers.SpendTo5000, pack.Offers.SpendTo5000)
	overrideString(&merged.Offers.SpendOver5000, pack.Offers.SpendOver5000)
	overrideString(&merged.Offers.HighCPA, pack.Offers.HighCPA)
	overrideString(&merged.Offers.Generic, pack.Offers.Generic)

	return merged, nil
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
