package types

// FilterRules is the declarative recipient filter from the message file.
// Both rule sets hold column names and are evaluated independently per
// recipient; failing any listed rule drops the recipient.
type FilterRules struct {
	DropEmpty    []string `toml:"drop_empty" yaml:"drop_empty"`
	DropNonempty []string `toml:"drop_nonempty" yaml:"drop_nonempty"`
}

// Message is one sending run's message definition, loaded once and shared
// read-only across all recipients. Subject and Body are template strings.
type Message struct {
	Subject string      `toml:"subject" yaml:"subject"`
	From    string      `toml:"from" yaml:"from"`
	ReplyTo string      `toml:"reply_to" yaml:"reply_to"`
	Body    string      `toml:"body" yaml:"body"`
	Filters FilterRules `toml:"filters" yaml:"filters"`
}

// SMTPConfig holds the submission server coordinates and credentials for one
// run. It is never persisted or logged.
type SMTPConfig struct {
	Server          string `toml:"smtp_server" yaml:"smtp_server"`
	Port            int    `toml:"smtp_port" yaml:"smtp_port"`
	Username        string `toml:"username" yaml:"username"`
	Password        string `toml:"password" yaml:"password"`
	AppPassword     string `toml:"app_password" yaml:"app_password"`
	ParallelWorkers int    `toml:"parallel_workers" yaml:"parallel_workers"`
}

// Credential returns the password to authenticate with, preferring an
// app-specific password when both are set.
func (c SMTPConfig) Credential() string {
	if c.AppPassword != "" {
		return c.AppPassword
	}
	return c.Password
}

// Workers returns the effective sender worker count, at least 1.
func (c SMTPConfig) Workers() int {
	if c.ParallelWorkers < 1 {
		return 1
	}
	return c.ParallelWorkers
}

// RenderedMail is the outcome of rendering the message templates against one
// recipient. It exists only between rendering and sending or display.
type RenderedMail struct {
	Recipient Recipient
	To        string
	Subject   string
	Body      string
}
