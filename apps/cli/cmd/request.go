package cmd

// The per-verb commands are thin shims: they marshal flags into an engine
// call and print the result. All request logic lives in the packages.

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/reqflow/packages/auth"
	"github.com/abdul-hamid-achik/reqflow/packages/config"
	"github.com/abdul-hamid-achik/reqflow/packages/form"
	"github.com/abdul-hamid-achik/reqflow/packages/httpclient"
)

var verbMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}

type requestFlags struct {
	headers      []string
	params       []string
	body         string
	jsonBody     string
	formFields   []string
	formFiles    []string
	timeout      int
	retries      int
	retryDelay   float64
	insecure     bool
	noRedirect   bool
	proxy        string
	binary       bool
	verbose      bool
	session      string
	authType     string
	username     string
	password     string
	token        string
	apiKey       string
	apiKeyHeader string
}

func newVerbCmd(method string) *cobra.Command {
	flags := &requestFlags{}

	cmd := &cobra.Command{
		Use:   strings.ToLower(method) + " URL",
		Short: fmt.Sprintf("Issue a %s request", method),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(method, args[0], flags)
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&flags.headers, "header", "H", nil, "request header as key:value (repeatable)")
	f.StringArrayVarP(&flags.params, "param", "p", nil, "query parameter as key=value (repeatable)")
	f.StringVar(&flags.body, "body", "", "raw request body")
	f.StringVar(&flags.jsonBody, "json", "", "JSON request body")
	f.StringArrayVar(&flags.formFields, "form", nil, "form field as name=value (repeatable)")
	f.StringArrayVar(&flags.formFiles, "form-file", nil, "form file as name=path (repeatable)")
	f.IntVar(&flags.timeout, "timeout", 0, "request timeout in seconds")
	f.IntVar(&flags.retries, "retries", 0, "total attempt budget")
	f.Float64Var(&flags.retryDelay, "retry-delay", 0, "linear backoff factor in seconds")
	f.BoolVarP(&flags.insecure, "insecure", "k", false, "skip SSL certificate verification")
	f.BoolVar(&flags.noRedirect, "no-redirect", false, "do not follow redirects")
	f.StringVar(&flags.proxy, "proxy", "", "proxy URL")
	f.BoolVar(&flags.binary, "binary", false, "fetch raw bytes regardless of content type")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "print response headers")
	f.StringVar(&flags.session, "session", "", "named session to reuse (cookies, auth, connections)")
	f.StringVar(&flags.authType, "auth-type", "", "auth scheme: basic, bearer, token, api_key, oauth2")
	f.StringVar(&flags.username, "username", "", "basic auth username")
	f.StringVar(&flags.password, "password", "", "basic auth password")
	f.StringVar(&flags.token, "token", "", "bearer/token auth value")
	f.StringVar(&flags.apiKey, "api-key", "", "API key value")
	f.StringVar(&flags.apiKeyHeader, "api-key-header", "", "API key header name")

	return cmd
}

func runRequest(method, url string, flags *requestFlags) error {
	fileCfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	cfg := fileCfg.ClientConfig()
	if flags.timeout > 0 {
		cfg.TimeoutSeconds = flags.timeout
	}
	if flags.retries > 0 {
		cfg.MaxRetries = flags.retries
	}
	if flags.retryDelay > 0 {
		cfg.RetryDelaySeconds = flags.retryDelay
	}
	if flags.insecure {
		cfg.VerifySSL = false
	}
	if flags.noRedirect {
		cfg.AllowRedirects = false
	}
	if flags.proxy != "" {
		cfg.ProxyURL = flags.proxy
	}

	sessionName := flags.session
	if sessionName == "" {
		sessionName = fileCfg.DefaultSession
	}
	sess := registry.GetOrCreate(sessionName, "", cfg)
	client := sess.Client
	url = sess.Resolve(url)

	if flags.authType != "" {
		spec := auth.Spec{
			Type:         auth.Type(flags.authType),
			Username:     flags.username,
			Password:     flags.password,
			Token:        flags.token,
			APIKey:       flags.apiKey,
			APIKeyHeader: flags.apiKeyHeader,
		}
		warnings, err := spec.Apply(client)
		if err != nil {
			return err
		}
		printWarnings(warnings, fileCfg.GetNoColor())
	}

	opts := httpclient.Options{
		Params:  splitPairs(flags.params, "="),
		Headers: splitPairs(flags.headers, ":"),
		Body:    flags.body,
	}
	if flags.jsonBody != "" {
		opts.JSONBody = json.RawMessage(flags.jsonBody)
	}
	if items := collectFormItems(flags); len(items) > 0 {
		opts.Form = form.Compose(items)
	}

	var resp *httpclient.Response
	if flags.binary {
		resp, err = client.GetBinary(url, opts.Params)
	} else {
		resp, err = client.Execute(method, url, opts)
	}
	if err != nil {
		return err
	}

	printResponse(resp, flags.verbose, fileCfg.GetNoColor())
	if !resp.IsSuccess() {
		os.Exit(1)
	}
	return nil
}

func collectFormItems(flags *requestFlags) []form.Item {
	var items []form.Item
	for name, value := range splitPairs(flags.formFields, "=") {
		items = append(items, form.Text(name, value))
	}
	for name, path := range splitPairs(flags.formFiles, "=") {
		items = append(items, form.File(name, path))
	}
	return items
}

func splitPairs(pairs []string, sep string) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		parts := strings.SplitN(pair, sep, 2)
		if len(parts) != 2 {
			continue
		}
		out[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return out
}

func printResponse(resp *httpclient.Response, verbose, noColor bool) {
	statusColor := color.New(color.FgGreen)
	switch {
	case resp.StatusCode >= 400:
		statusColor = color.New(color.FgRed)
	case resp.StatusCode >= 300:
		statusColor = color.New(color.FgYellow)
	}
	if noColor {
		statusColor.DisableColor()
	}

	fmt.Fprintf(os.Stderr, "%s (%dms)\n", statusColor.Sprint(resp.Status), resp.DurationMs())

	if verbose {
		for k, v := range resp.Headers {
			fmt.Fprintf(os.Stderr, "%s: %s\n", k, v)
		}
	}
	printWarnings(resp.Warnings, noColor)

	if resp.Binary {
		_, _ = os.Stdout.Write(resp.Body)
		return
	}
	fmt.Println(resp.Text())
}

func printWarnings(warnings []string, noColor bool) {
	warn := color.New(color.FgYellow)
	if noColor {
		warn.DisableColor()
	}
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, warn.Sprintf("warning: %s", w))
	}
}
