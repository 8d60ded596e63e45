package pipeline

// DisableRetryBackoff makes publish retries immediate.
func (p *Pipeline) DisableRetryBackoff() { p.retryBackoff = 0 }
