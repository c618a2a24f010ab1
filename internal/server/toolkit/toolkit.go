// Package toolkit holds the fixed informational content served to users:
// the AVO response roadmap, guided journal prompts, downloadable template
// catalog and the disclaimers that gate the AI and template features.
package toolkit

type Phase struct {
	Phase       int      `json:"phase"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Guidance    []string `json:"guidance"`
}

type Template struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Relevance   string `json:"relevance"`
}

const (
	DisclaimerRewrite   = "rewrite"
	DisclaimerTemplates = "templates"
)

var phases = []Phase{
	{1, "Initial Allegation", "An AVO application has been made or you've received notice.", []string{
		"Do NOT contact the protected person",
		"Document everything - save all communications",
		"Seek legal advice immediately",
		"Do not react emotionally on social media",
	}},
	{2, "Service & Documentation", "You've been officially served with AVO documents.", []string{
		"Read all documents carefully",
		"Note all court dates and deadlines",
		"Gather evidence: messages, emails, witnesses",
		"Start a detailed timeline of events",
	}},
	{3, "Legal Representation", "Engage a solicitor who specializes in family law.", []string{
		"Find a solicitor experienced in AVOs",
		"Be completely honest with your lawyer",
		"Prepare a statement of your version of events",
		"Discuss potential outcomes and strategies",
	}},
	{4, "Evidence Gathering", "Collect all relevant documentation and witness statements.", []string{
		"Text messages, emails, call logs",
		"Photos, videos, receipts",
		"Witness statements from family/friends",
		"Medical or police reports if relevant",
	}},
	{5, "Court Preparation", "Prepare for your court appearance.", []string{
		"Dress professionally for court",
		"Arrive early and be respectful",
		"Speak calmly and stick to facts",
		"Follow your lawyer's advice exactly",
	}},
	{6, "First Court Appearance", "Your initial appearance before the magistrate.", []string{
		"Listen carefully to all proceedings",
		"Do not interrupt or show emotion",
		"Answer questions truthfully and concisely",
		"Take notes if permitted",
	}},
	{7, "Negotiation & Mediation", "Attempt to resolve the matter outside of a contested hearing.", []string{
		"Consider reasonable compromises",
		"Focus on protecting your relationship with children",
		"Understand the implications of consent orders",
		"Get everything in writing",
	}},
	{8, "Final Hearing (if required)", "Present your case if the matter proceeds to a contested hearing.", []string{
		"Present evidence methodically",
		"Remain calm under cross-examination",
		"Trust your legal representation",
		"Be prepared for any outcome",
	}},
	{9, "Order Compliance", "Understanding and complying with the final order.", []string{
		"Read the order carefully - understand every condition",
		"Comply fully, even if you disagree",
		"Keep a copy of the order accessible at all times",
		"Document your compliance",
	}},
	{10, "Moving Forward", "Life after an AVO - rebuilding and protecting yourself.", []string{
		"Consider counseling for yourself and children",
		"Maintain detailed records of all interactions",
		"Focus on being the best parent you can be",
		"Know your rights regarding variation or discharge",
	}},
}

var templates = []Template{
	{"neutral-communication", "Neutral Communication Template", "For necessary communication regarding children", "Ongoing"},
	{"evidence-log", "Evidence Log Template", "Track and document all relevant evidence", "Phase 4"},
	{"witness-statement", "Witness Statement Guide", "How to request and structure witness statements", "Phase 4"},
	{"timeline-template", "Timeline of Events Template", "Chronological record of relevant incidents", "Phase 2"},
}

var prompts = []string{
	"What happened today that might matter in court?",
	"How are my children doing? What did we do together?",
	"What communication occurred today and how did I respond?",
	"What am I grateful for today?",
	"What challenges did I face and how did I handle them?",
}

var disclaimers = map[string][]string{
	DisclaimerRewrite: {
		"I understand this is not legal advice and I should consult a qualified solicitor.",
		"I acknowledge that AI-generated content may contain errors or inaccuracies.",
		"I will review and adapt the rewritten text to my specific situation before using it.",
	},
	DisclaimerTemplates: {
		"I understand these templates are educational resources only, not legal advice.",
		"I will consult a qualified solicitor before using any template in legal proceedings.",
		"I acknowledge that every legal situation is unique and requires professional guidance.",
	},
}

// Phases returns a copy of the ten roadmap phases in order.
func Phases() []Phase {
	out := make([]Phase, len(phases))
	copy(out, phases)
	return out
}

func FindPhase(n int) (Phase, bool) {
	if n < 1 || n > len(phases) {
		return Phase{}, false
	}
	return phases[n-1], true
}

func Prompts() []string {
	return append([]string(nil), prompts...)
}

func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

func FindTemplate(id string) (Template, bool) {
	for _, t := range templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// Disclaimers returns the statements for kind, or nil for an unknown kind.
func Disclaimers(kind string) []string {
	d, ok := disclaimers[kind]
	if !ok {
		return nil
	}
	return append([]string(nil), d...)
}
