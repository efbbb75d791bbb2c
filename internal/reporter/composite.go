package reporter

// CompositeReporter fans out events to multiple reporters.
type CompositeReporter struct {
	reporters []Reporter
}

// NewCompositeReporter creates a composite reporter. Nil reporters are dropped.
func NewCompositeReporter(reporters ...Reporter) *CompositeReporter {
	kept := make([]Reporter, 0, len(reporters))
	for _, r := range reporters {
		if r != nil {
			kept = append(kept, r)
		}
	}
	return &CompositeReporter{reporters: kept}
}

func (c *CompositeReporter) each(fn func(Reporter)) {
	for _, r := range c.reporters {
		fn(r)
	}
}

func (c *CompositeReporter) Initialization(summary InitializationSummary) {
	c.each(func(r Reporter) { r.Initialization(summary) })
}

func (c *CompositeReporter) BatchStarted(info BatchStartInfo) {
	c.each(func(r Reporter) { r.BatchStarted(info) })
}

func (c *CompositeReporter) FileProgress(context FileProgressContext) {
	c.each(func(r Reporter) { r.FileProgress(context) })
}

func (c *CompositeReporter) Classification(summary ClassificationSummary) {
	c.each(func(r Reporter) { r.Classification(summary) })
}

func (c *CompositeReporter) TransformConfig(summary TransformConfigSummary) {
	c.each(func(r Reporter) { r.TransformConfig(summary) })
}

func (c *CompositeReporter) TransformStarted(durationSecs float64) {
	c.each(func(r Reporter) { r.TransformStarted(durationSecs) })
}

func (c *CompositeReporter) TransformProgress(progress ProgressSnapshot) {
	c.each(func(r Reporter) { r.TransformProgress(progress) })
}

func (c *CompositeReporter) FileComplete(outcome FileOutcome) {
	c.each(func(r Reporter) { r.FileComplete(outcome) })
}

func (c *CompositeReporter) Warning(message string) {
	c.each(func(r Reporter) { r.Warning(message) })
}

func (c *CompositeReporter) Error(err ReporterError) {
	c.each(func(r Reporter) { r.Error(err) })
}

func (c *CompositeReporter) BatchComplete(summary BatchSummary) {
	c.each(func(r Reporter) { r.BatchComplete(summary) })
}

func (c *CompositeReporter) VerificationComplete(summary VerificationSummary) {
	c.each(func(r Reporter) { r.VerificationComplete(summary) })
}

func (c *CompositeReporter) OperationComplete(message string) {
	c.each(func(r Reporter) { r.OperationComplete(message) })
}

func (c *CompositeReporter) Verbose(message string) {
	c.each(func(r Reporter) { r.Verbose(message) })
}
