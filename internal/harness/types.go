package harness

// TraceEvent is one executed step: a local edit or an envelope delivery.
// Value is the acting site's content immediately after the step, so the
// golden trace reads as a timeline of what each site saw.
type TraceEvent struct {
	Type  string `json:"type"` // "edit" or "delivery"
	Site  int    `json:"site"`
	From  int    `json:"from,omitempty"`
	Token string `json:"token"`
	Value string `json:"value"`
}

// Trace event types.
const (
	EventEdit     = "edit"
	EventDelivery = "delivery"
)

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Trace lists all executed steps in schedule order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds one message per failed assertion.
	Errors []string `json:"errors,omitempty"`

	// Values maps site id to final content.
	Values map[int]string `json:"values"`

	// Cemeteries maps site id to the final pending tombstone count.
	Cemeteries map[int]int `json:"cemeteries"`
}

// NewResult creates an empty passing result.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Trace:      []TraceEvent{},
		Values:     make(map[int]string),
		Cemeteries: make(map[int]int),
	}
}

// AddError records a failed assertion and marks the result failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddEditTrace appends a local edit event.
func (r *Result) AddEditTrace(site int, token, value string) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:  EventEdit,
		Site:  site,
		Token: token,
		Value: value,
	})
}

// AddDeliveryTrace appends an envelope delivery event.
func (r *Result) AddDeliveryTrace(to, from int, token, value string) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:  EventDelivery,
		Site:  to,
		From:  from,
		Token: token,
		Value: value,
	})
}
