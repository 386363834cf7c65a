package record

// Technique is an ATT&CK technique an ability implements.
type Technique struct {
	ID       int64  `json:"id"`
	AttackID string `json:"attack_id"`
	Name     string `json:"name"`
	Tactic   string `json:"tactic"`
}

// TechniqueFrom builds a Technique from a core_attack row.
func TechniqueFrom(r Record) Technique {
	return Technique{
		ID:       r.ID(),
		AttackID: r.String("attack_id"),
		Name:     r.String("name"),
		Tactic:   r.String("tactic"),
	}
}

// Payload is a file an ability needs delivered before it runs.
type Payload struct {
	ID      int64  `json:"id"`
	Ability int64  `json:"ability"`
	Payload string `json:"payload"`
}

// PayloadFrom builds a Payload from a core_payload row.
func PayloadFrom(r Record) Payload {
	return Payload{ID: r.ID(), Ability: r.Int("ability"), Payload: r.String("payload")}
}

// Parser extracts facts from an ability's output.
type Parser struct {
	ID       int64  `json:"id"`
	Ability  int64  `json:"ability"`
	Name     string `json:"name"`
	Property string `json:"property"`
	Script   string `json:"script"`
}

// ParserFrom builds a Parser from a core_parser row.
func ParserFrom(r Record) Parser {
	return Parser{
		ID:       r.ID(),
		Ability:  r.Int("ability"),
		Name:     r.String("name"),
		Property: r.String("property"),
		Script:   r.String("script"),
	}
}

// Ability is one platform variant of an ability specification, with its
// technique, payloads and parsers attached.
type Ability struct {
	ID          int64     `json:"id"`
	AbilityID   string    `json:"ability_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Platform    string    `json:"platform"`
	Test        string    `json:"test"`
	Cleanup     string    `json:"cleanup"`
	Technique   Technique `json:"technique"`
	Parsers     []Parser  `json:"parser"`
	Payloads    []Payload `json:"payload"`
}

// AbilityFrom builds an Ability from a core_ability row. The technique is
// left for the caller to resolve; only its natural id is copied.
func AbilityFrom(r Record) Ability {
	return Ability{
		ID:          r.ID(),
		AbilityID:   r.String("ability_id"),
		Name:        r.String("name"),
		Description: r.String("description"),
		Platform:    r.String("platform"),
		Test:        r.String("test"),
		Cleanup:     r.String("cleanup"),
		Technique:   Technique{AttackID: r.String("technique")},
	}
}

// PhaseMapping places one ability (by natural id) in one adversary phase.
type PhaseMapping struct {
	ID          int64  `json:"id"`
	AdversaryID int64  `json:"adversary_id"`
	Phase       int    `json:"phase"`
	AbilityID   string `json:"ability_id"`
}

// PhaseMappingFrom builds a PhaseMapping from a core_adversary_map row.
func PhaseMappingFrom(r Record) PhaseMapping {
	return PhaseMapping{
		ID:          r.ID(),
		AdversaryID: r.Int("adversary_id"),
		Phase:       int(r.Int("phase")),
		AbilityID:   r.String("ability_id"),
	}
}

// Adversary is a profile of phased abilities.
type Adversary struct {
	ID          int64             `json:"id"`
	AdversaryID string            `json:"adversary_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Phases      map[int][]Ability `json:"phases"`
}

// AdversaryFrom builds an Adversary from a core_adversary row.
func AdversaryFrom(r Record) Adversary {
	return Adversary{
		ID:          r.ID(),
		AdversaryID: r.String("adversary_id"),
		Name:        r.String("name"),
		Description: r.String("description"),
	}
}

// Agent is a deployed implant identified by its paw.
type Agent struct {
	ID       int64        `json:"id"`
	Paw      string       `json:"paw"`
	Host     string       `json:"host"`
	Platform string       `json:"platform"`
	LastSeen string       `json:"last_seen"`
	Groups   []AgentGroup `json:"groups"`
}

// AgentFrom builds an Agent from a core_agent row.
func AgentFrom(r Record) Agent {
	return Agent{
		ID:       r.ID(),
		Paw:      r.String("paw"),
		Host:     r.String("host"),
		Platform: r.String("platform"),
		LastSeen: r.String("last_seen"),
	}
}

// AgentGroup is an active group an agent belongs to, with the membership row id.
type AgentGroup struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	MapID int64  `json:"map_id"`
}

// Membership links one agent to one group.
type Membership struct {
	ID      int64 `json:"id"`
	GroupID int64 `json:"group_id"`
	AgentID int64 `json:"agent_id"`
}

// MembershipFrom builds a Membership from a core_group_map row.
func MembershipFrom(r Record) Membership {
	return Membership{ID: r.ID(), GroupID: r.Int("group_id"), AgentID: r.Int("agent_id")}
}

// Group is a host group. Deactivated is nil while the group is active.
type Group struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Deactivated *string      `json:"deactivated"`
	Agents      []Membership `json:"agents"`
}

// GroupFrom builds a Group from a core_group row.
func GroupFrom(r Record) Group {
	return Group{ID: r.ID(), Name: r.String("name"), Deactivated: r.NullString("deactivated")}
}

// Active reports whether the group has not been deactivated.
func (g Group) Active() bool {
	return g.Deactivated == nil
}

// Fact is a property/value datum attached to a source.
type Fact struct {
	ID        int64  `json:"id"`
	Property  string `json:"property"`
	Value     string `json:"value"`
	SourceID  int64  `json:"source_id"`
	Score     int64  `json:"score"`
	Blacklist int64  `json:"blacklist"`
	SetID     int64  `json:"set_id"`
	LinkID    *int64 `json:"link_id"`
}

// FactFrom builds a Fact from a core_fact row.
func FactFrom(r Record) Fact {
	return Fact{
		ID:        r.ID(),
		Property:  r.String("property"),
		Value:     r.String("value"),
		SourceID:  r.Int("source_id"),
		Score:     r.Int("score"),
		Blacklist: r.Int("blacklist"),
		SetID:     r.Int("set_id"),
		LinkID:    r.NullInt("link_id"),
	}
}

// Source is a named collection of facts.
type Source struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Facts []Fact `json:"facts"`
}

// SourceFrom builds a Source from a core_source row.
func SourceFrom(r Record) Source {
	return Source{ID: r.ID(), Name: r.String("name")}
}

// Link is one executed or scheduled ability inside an operation, flattened
// with the ability's name and description.
type Link struct {
	ID                 int64   `json:"id"`
	AbilityName        string  `json:"abilityName"`
	AbilityDescription string  `json:"abilityDescription"`
	OpID               int64   `json:"op_id"`
	Paw                string  `json:"paw"`
	Ability            int64   `json:"ability"`
	Command            string  `json:"command"`
	Cleanup            int64   `json:"cleanup"`
	Score              int64   `json:"score"`
	Status             int64   `json:"status"`
	Decide             *string `json:"decide"`
	Collect            *string `json:"collect"`
	Finish             *string `json:"finish"`
	Jitter             int64   `json:"jitter"`
	Facts              []Fact  `json:"facts,omitempty"`
}

// LinkFrom builds a Link from a core_chain row.
func LinkFrom(r Record) Link {
	return Link{
		ID:      r.ID(),
		OpID:    r.Int("op_id"),
		Paw:     r.String("paw"),
		Ability: r.Int("ability"),
		Command: r.String("command"),
		Cleanup: r.Int("cleanup"),
		Score:   r.Int("score"),
		Status:  r.Int("status"),
		Decide:  r.NullString("decide"),
		Collect: r.NullString("collect"),
		Finish:  r.NullString("finish"),
		Jitter:  r.Int("jitter"),
	}
}

// Result is the raw output collected for a link.
type Result struct {
	ID     int64  `json:"id"`
	LinkID int64  `json:"link_id"`
	Output string `json:"output"`
	Link   Link   `json:"link"`
}

// ResultFrom builds a Result from a core_result row.
func ResultFrom(r Record) Result {
	return Result{ID: r.ID(), LinkID: r.Int("link_id"), Output: r.String("output")}
}

// Operation is one run of an adversary against a host group.
type Operation struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	HostGroup   Group     `json:"host_group"`
	AdversaryID int64     `json:"adversary_id"`
	Adversary   Adversary `json:"adversary"`
	Start       string    `json:"start"`
	Finish      *string   `json:"finish"`
	Phase       int64     `json:"phase"`
	Jitter      string    `json:"jitter"`
	Cleanup     bool      `json:"cleanup"`
	Stealth     bool      `json:"stealth"`
	Planner     *int64    `json:"planner"`
	Chain       []Link    `json:"chain"`
	Facts       []Fact    `json:"facts"`
}

// OperationFrom builds an Operation from a core_operation row. The host
// group id is copied into HostGroup.ID for the caller to resolve.
func OperationFrom(r Record) Operation {
	return Operation{
		ID:          r.ID(),
		Name:        r.String("name"),
		HostGroup:   Group{ID: r.Int("host_group")},
		AdversaryID: r.Int("adversary_id"),
		Start:       r.String("start"),
		Finish:      r.NullString("finish"),
		Phase:       r.Int("phase"),
		Jitter:      r.String("jitter"),
		Cleanup:     r.Bool("cleanup"),
		Stealth:     r.Bool("stealth"),
		Planner:     r.NullInt("planner"),
	}
}

// Planner is a registered planning module.
type Planner struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Module string `json:"module"`
}

// PlannerFrom builds a Planner from a core_planner row.
func PlannerFrom(r Record) Planner {
	return Planner{ID: r.ID(), Name: r.String("name"), Module: r.String("module")}
}
