package main

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdnsq/dnsdbq/internal/archive"
	"github.com/pdnsq/dnsdbq/internal/backend"
	"github.com/pdnsq/dnsdbq/internal/batch"
	"github.com/pdnsq/dnsdbq/internal/config"
	"github.com/pdnsq/dnsdbq/internal/dnslog"
	"github.com/pdnsq/dnsdbq/internal/ioengine"
	"github.com/pdnsq/dnsdbq/internal/metrics"
	"github.com/pdnsq/dnsdbq/internal/planner"
	"github.com/pdnsq/dnsdbq/internal/present"
	"github.com/pdnsq/dnsdbq/internal/query"
	"github.com/pdnsq/dnsdbq/internal/timefence"
	"github.com/pdnsq/dnsdbq/internal/writer"
)

var version = "0.1.0"

// opts mirrors the CLI surface of spec.md §6 closely enough that a reader
// of the original tool's manual page would recognize every flag.
type opts struct {
	mf modeFlags

	rrtype    string
	bailiwick string

	after  string
	before string
	strict bool

	queryLimit  int
	outputLimit int
	maxCount    int
	offset      int

	sortNormal  bool
	sortReverse bool
	sortKeys    string

	presentation string
	jsonShortcut bool

	batchCount int
	merge      bool
	jsonInput  string

	backendName string
	verb        string
	skipVerify  bool

	info     bool
	debug    int
	quiet    bool
	graveled bool

	metricsAddr string

	archiveBucket   string
	archiveEndpoint string
	archiveAccess   string
	archiveSecret   string

	flagBaseURL  string
	flagAPIKey   string
	flagUsername string
	flagPassword string
}

func main() {
	o := &opts{}
	root := newRootCmd(o)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(o *opts) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dnsdbq",
		Short:   "Query passive-DNS services from the command line",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.mf.rrsetByName, "r", "", "rrset lookup by owner name (thing[/rrtype[/bailiwick]])")
	f.StringVar(&o.mf.rdataByName, "n", "", "rdata lookup by name (thing[/rrtype])")
	f.StringVar(&o.mf.rdataByIP, "i", "", "rdata lookup by IP address or prefix (addr[/pfxlen])")
	f.StringVar(&o.mf.rdataRaw, "N", "", "rdata lookup by raw hex value (thing[/rrtype])")
	f.StringVar(&o.mf.rrsetRaw, "R", "", "rrset lookup by raw hex rdata (thing[/rrtype[/bailiwick]])")

	f.StringVarP(&o.rrtype, "rrtype", "t", "", "resource record type")
	f.StringVarP(&o.bailiwick, "bailiwick", "b", "", "bailiwick")

	f.StringVarP(&o.after, "after", "A", "", "time fence: only results after this time")
	f.StringVarP(&o.before, "before", "B", "", "time fence: only results before this time")
	f.BoolVarP(&o.strict, "complete", "c", false, "strict time fencing (both endpoints must be fully contained)")

	f.IntVarP(&o.queryLimit, "limit", "l", 0, "server-side result limit")
	f.IntVarP(&o.outputLimit, "output-limit", "L", 0, "client-side output cap")
	f.IntVarP(&o.maxCount, "max-count", "M", 0, "summarize result cap")
	f.IntVarP(&o.offset, "offset", "O", 0, "result offset (summarize pagination)")

	f.BoolVarP(&o.sortNormal, "sort", "s", false, "sort and dedup output (ascending)")
	f.BoolVarP(&o.sortReverse, "rsort", "S", false, "sort and dedup output (descending)")
	f.StringVarP(&o.sortKeys, "keys", "k", "", "comma-separated sort keys: first,last,count,name,data")

	f.StringVarP(&o.presentation, "presentation", "p", "dns", "output format: dns, json, or csv")
	f.BoolVarP(&o.jsonShortcut, "json", "j", false, "shortcut for -p json")

	f.CountVarP(&o.batchCount, "batch", "f", "read a batch script from stdin (repeat for verbose framing)")
	f.BoolVarP(&o.merge, "merge", "m", false, "merge mode: share one writer across the whole batch")
	f.StringVarP(&o.jsonInput, "json-input", "J", "", "read NDJSON records directly from file or - (bypasses the backend)")

	f.StringVarP(&o.backendName, "backend", "u", "", "backend system: dnsdb (default) or circl")
	f.StringVarP(&o.verb, "verb", "V", "lookup", "verb: lookup or summarize")
	f.BoolVarP(&o.skipVerify, "insecure", "U", false, "skip TLS certificate verification")

	f.BoolVarP(&o.info, "info", "I", false, "print the backend's capability document instead of querying")
	f.CountVarP(&o.debug, "debug", "d", "increase diagnostic verbosity (repeatable)")
	f.BoolVarP(&o.quiet, "quiet", "q", false, "suppress the dedup-sort auto-enable warning")
	f.BoolVarP(&o.graveled, "graveled", "g", false, "suppress the final record-count summary line")
	f.StringVar(&o.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090) for the duration of the run")

	f.StringVar(&o.archiveBucket, "archive-bucket", "", "upload rendered output to this S3-compatible bucket")
	f.StringVar(&o.archiveEndpoint, "archive-endpoint", "", "S3-compatible endpoint for --archive-bucket")
	f.StringVar(&o.archiveAccess, "archive-access-key", "", "access key for --archive-bucket")
	f.StringVar(&o.archiveSecret, "archive-secret-key", "", "secret key for --archive-bucket")

	f.StringVar(&o.flagBaseURL, "base-url", "", "backend base URL (overrides config file)")
	f.StringVar(&o.flagAPIKey, "api-key", "", "backend API key (overrides config file)")
	f.StringVar(&o.flagUsername, "username", "", "backend username, for backends using basic auth")
	f.StringVar(&o.flagPassword, "password", "", "backend password, for backends using basic auth")

	return cmd
}

// run wires the whole pipeline together for one invocation: config, logger,
// backend, and either the single-query path or the batch driver.
func run(o *opts, stdout io.Writer) error {
	if err := validateCombinations(o); err != nil {
		return fmt.Errorf("usage: %w", err)
	}
	o.mf.rrtype, o.mf.bailiwick = o.rrtype, o.bailiwick
	applyAutoSort(o)

	settings, err := config.Load(o.backendName, o.flagBaseURL, o.flagAPIKey, o.flagUsername, o.flagPassword)
	if err != nil {
		return err
	}
	if err := os.Setenv("DNSDBQ_TIME_FORMAT", settings.TimeFormat); err != nil {
		return err
	}

	log := dnslog.NewLogger(dnslog.FromVerbosity(o.debug))
	defer log.Sync() //nolint:errcheck

	be, err := backend.New(settings.Backend, settings.BaseURL, settings.APIKey, settings.Username, settings.Password)
	if err != nil {
		return fmt.Errorf("configuring backend: %w", err)
	}

	if o.info {
		doc, err := be.Info()
		if err != nil {
			return err
		}
		_, err = stdout.Write(append(doc, '\n'))
		return err
	}

	client := &http.Client{}
	if o.skipVerify {
		client.Transport = insecureTransport()
	}

	mx := metrics.New()
	if o.metricsAddr != "" {
		mx.Serve(o.metricsAddr, log)
	}
	engine := ioengine.New(context.Background(), client, 8, log, mx)
	chain := writer.NewChain()

	// archiveBuf, when archiving is requested, captures everything the
	// presenter writes so it can be uploaded once the run finishes; out is
	// what presenters actually write to (stdout always, the capture buffer
	// too when archiving).
	out, finishArchive := archiveSink(o, stdout)

	format := presentationFormat(o)
	verb := present.VerbLookup
	if o.verb == "summarize" {
		verb = present.VerbSummarize
	}
	newPresenter := func() (writer.Presenter, error) {
		return present.New(format, verb, out)
	}

	switch {
	case o.jsonInput != "":
		err = runJSONInput(o, chain, newPresenter, log, mx)
	case o.batchCount > 0:
		err = runBatch(o, be, engine, chain, newPresenter, log, out)
	default:
		err = runSingle(o, be, engine, chain, newPresenter, log, mx)
	}
	if err != nil {
		return err
	}

	if summary := mx.Summary(o.graveled); summary != "" && o.debug >= 2 {
		fmt.Fprintln(os.Stderr, ";; "+summary)
	}
	if err := finishArchive(); err != nil {
		log.Error("archive upload failed", zap.Error(err))
	}
	if code := engine.ExitCode(); code != 0 {
		os.Exit(code)
	}
	return nil
}

func insecureTransport() http.RoundTripper {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	return t
}

func presentationFormat(o *opts) present.Format {
	if o.jsonShortcut {
		return present.FormatJSON
	}
	switch o.presentation {
	case "json":
		return present.FormatJSON
	case "csv":
		return present.FormatCSV
	default:
		return present.FormatText
	}
}

// validateCombinations rejects, before any network or file I/O, the flag
// combinations spec.md §6 calls out as startup errors.
func validateCombinations(o *opts) error {
	if o.mf.count() > 1 {
		return fmt.Errorf("-r, -n, -i, -N, or -R can only appear once")
	}
	if o.jsonInput != "" && o.bailiwick != "" {
		return fmt.Errorf("-b with -J makes no sense")
	}
	if o.merge && o.batchCount == 0 {
		return fmt.Errorf("using -m without -f makes no sense")
	}
	if o.merge && o.batchCount > 1 {
		return fmt.Errorf("using -m with more than one -f makes no sense")
	}
	if o.strict && o.after == "" && o.before == "" {
		return fmt.Errorf("-c without -A or -B makes no sense")
	}
	if o.sortKeys != "" && !o.sortNormal && !o.sortReverse {
		return fmt.Errorf("using -k without -s or -S makes no sense")
	}
	if o.maxCount != 0 && o.verb == "lookup" {
		return fmt.Errorf("-M with a lookup verb makes no sense")
	}
	if o.mf.count() == 0 && o.jsonInput == "" && o.batchCount == 0 && !o.info {
		return fmt.Errorf("one of -r, -n, -i, -N, -R, -J, -f, or -I is required")
	}
	return nil
}

// applyAutoSort turns on -S, with a stderr warning, when -A and -B are both
// given without -c, -J, or sorting already requested: without a dedup sort
// two fenced lookups can print the same record twice at the fence boundary.
func applyAutoSort(o *opts) {
	if o.after == "" || o.before == "" {
		return
	}
	if o.sortNormal || o.sortReverse || o.strict || o.jsonInput != "" {
		return
	}
	if !o.quiet {
		fmt.Fprintln(os.Stderr, "dnsdbq: warning: -A and -B w/o -c requires"+
			" sorting for dedup, so turning on -S here.")
	}
	o.sortReverse = true
}

// runSingle drives exactly one query through the planner/reader/writer
// pipeline and waits for it to finish.
func runSingle(o *opts, be backend.Backend, engine *ioengine.Engine, chain *writer.Chain,
	newPresenter func() (writer.Presenter, error), log *zap.Logger, mx *metrics.Metrics) error {

	q, err := buildQuery(o.mf, o.after, o.before, o.strict, effectiveLimit(o), o.offset)
	if err != nil {
		return fmt.Errorf("usage: %w", err)
	}

	p, err := newPresenter()
	if err != nil {
		return err
	}
	ks, err := buildSortKeys(o.sortNormal, o.sortReverse, o.sortKeys)
	if err != nil {
		return err
	}
	w, err := writer.New(fenceFromQuery(q), ks, o.outputLimit, p, log)
	if err != nil {
		return err
	}
	chain.Register(w)
	defer chain.Fini(w)

	readers, err := planner.Plan(o.verb, q, be, w)
	if err != nil {
		return err
	}
	for _, r := range readers {
		if err := engine.Launch(r); err != nil {
			return err
		}
	}
	engine.DrainUntil(0)
	if err := w.Finish(); err != nil {
		log.Warn("writer finish failed", zap.Error(err))
	}
	mx.AddRecords(w.Count())
	return nil
}

func runBatch(o *opts, be backend.Backend, engine *ioengine.Engine, chain *writer.Chain,
	newPresenter func() (writer.Presenter, error), log *zap.Logger, out io.Writer) error {

	framing := batch.FramingNone
	switch {
	case o.batchCount == 1:
		framing = batch.FramingOriginal
	case o.batchCount >= 2:
		framing = batch.FramingVerbose
	}

	var defaults batch.Defaults
	defaults.Complete = o.strict
	defaults.Limit = effectiveLimit(o)
	after, before, err := batchDefaultFence(o)
	if err != nil {
		return fmt.Errorf("usage: %w", err)
	}
	defaults.After, defaults.Before = after, before

	ks, err := buildSortKeys(o.sortNormal, o.sortReverse, o.sortKeys)
	if err != nil {
		return err
	}

	opts := batch.Options{
		Defaults:     defaults,
		Framing:      framing,
		Merge:        o.merge,
		Verb:         o.verb,
		MaxInFlight:  8,
		SortKeys:     ks,
		Cap:          o.outputLimit,
		NewPresenter: newPresenter,
	}
	driver, err := batch.New(opts, be, engine, chain, out, log)
	if err != nil {
		return fmt.Errorf("usage: %w", err)
	}
	return driver.Run(bufio.NewReader(os.Stdin))
}

// batchDefaultFence resolves -A/-B into the fence every batch line falls
// back to when it doesn't specify its own, per spec.md §4.8.
func batchDefaultFence(o *opts) (after, before int64, err error) {
	if o.after != "" {
		q, err := buildQuery(modeFlags{rrsetByName: "placeholder.invalid"}, o.after, "", false, 0, 0)
		if err != nil {
			return 0, 0, err
		}
		after = q.After()
	}
	if o.before != "" {
		q, err := buildQuery(modeFlags{rrsetByName: "placeholder.invalid"}, "", o.before, false, 0, 0)
		if err != nil {
			return 0, 0, err
		}
		before = q.Before()
	}
	return after, before, nil
}

// effectiveLimit applies -M (the summarize-mode cap) in place of -l when
// the chosen verb is summarize, since a lookup's server-side limit and a
// summarize's result cap occupy the same query parameter at the backend.
func effectiveLimit(o *opts) int {
	if o.verb == "summarize" && o.maxCount != 0 {
		return o.maxCount
	}
	return o.queryLimit
}

// fenceFromQuery narrows q's time-fence fields into the timefence.Fence the
// writer enforces per record.
func fenceFromQuery(q query.Query) timefence.Fence {
	return timefence.Fence{After: q.After(), Before: q.Before(), Complete: q.IsComplete()}
}

// archiveSink wires the optional --archive-bucket feature: when set, every
// byte a presenter writes is captured alongside being written to stdout, and
// uploaded once the run completes.
func archiveSink(o *opts, stdout io.Writer) (out io.Writer, finish func() error) {
	if o.archiveBucket == "" {
		return stdout, func() error { return nil }
	}
	buf := &capturingWriter{w: stdout}
	finish = func() error {
		creds := &archive.Credentials{
			Endpoint:        o.archiveEndpoint,
			AccessKeyID:     o.archiveAccess,
			SecretAccessKey: o.archiveSecret,
			UseSSL:          true,
		}
		uploader := archive.NewUploader(creds, o.archiveBucket)
		_, err := uploader.UploadRun(context.Background(), "dnsdbq", "run.ndjson", time.Now(), buf.captured.Bytes())
		return err
	}
	return buf, finish
}

// capturingWriter tees everything written to it into an in-memory buffer
// (for the archive uploader) while still writing through to the wrapped
// writer (stdout) immediately.
type capturingWriter struct {
	w        io.Writer
	captured bytes.Buffer
}

func (c *capturingWriter) Write(p []byte) (int, error) {
	c.captured.Write(p)
	return c.w.Write(p)
}
