package reporter

// Reporter defines the interface for progress reporting.
type Reporter interface {
	Initialization(summary InitializationSummary)
	BatchStarted(info BatchStartInfo)
	FileProgress(context FileProgressContext)
	Classification(summary ClassificationSummary)
	TransformConfig(summary TransformConfigSummary)
	TransformStarted(durationSecs float64)
	TransformProgress(progress ProgressSnapshot)
	FileComplete(outcome FileOutcome)
	Warning(message string)
	Error(err ReporterError)
	BatchComplete(summary BatchSummary)
	VerificationComplete(summary VerificationSummary)
	OperationComplete(message string)
	Verbose(message string)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) Initialization(InitializationSummary)     {}
func (NullReporter) BatchStarted(BatchStartInfo)              {}
func (NullReporter) FileProgress(FileProgressContext)         {}
func (NullReporter) Classification(ClassificationSummary)     {}
func (NullReporter) TransformConfig(TransformConfigSummary)   {}
func (NullReporter) TransformStarted(float64)                 {}
func (NullReporter) TransformProgress(ProgressSnapshot)       {}
func (NullReporter) FileComplete(FileOutcome)                 {}
func (NullReporter) Warning(string)                           {}
func (NullReporter) Error(ReporterError)                      {}
func (NullReporter) BatchComplete(BatchSummary)               {}
func (NullReporter) VerificationComplete(VerificationSummary) {}
func (NullReporter) OperationComplete(string)                 {}
func (NullReporter) Verbose(string)                           {}
