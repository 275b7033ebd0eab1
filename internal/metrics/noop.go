package metrics

// Ensure Noop implements Recorder interface at compile time
var _ Recorder = (*Noop)(nil)

// Noop is a no-op Recorder used when metrics are disabled.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) RecordRegistration()                          {}
func (n *Noop) RecordLogin(success bool)                     {}
func (n *Noop) RecordTokenIssued()                           {}
func (n *Noop) RecordTokenValidation(result string)          {}
func (n *Noop) RecordTokenRefresh(success bool)              {}
func (n *Noop) RecordTokenRevoked()                          {}
func (n *Noop) RecordOAuthCallback(provider string, ok bool) {}
func (n *Noop) RecordHTTPRequest(method, path, status string, durationSeconds float64) {
}
