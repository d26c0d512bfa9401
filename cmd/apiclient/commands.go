package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/tokenmodel"
	"github.com/spf13/cobra"
)

const passwordEnvVar = "API_PASSWORD"

// Set at build time with -ldflags "-X main.version=..."
var version = "dev"

func rootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "apiclient",
		Short:         "Authenticated requests against the API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.writeMetrics()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.profilePath, "profile", "", "YAML profile layered over the environment")
	flags.StringVar(&a.baseURL, "base-url", "", "API base URL (overrides API_BASE_URL)")
	flags.StringVar(&a.credentialsFile, "credentials-file", "", "Encrypted credentials file (overrides CREDENTIALS_FILE)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	flags.BoolVar(&a.noRefresh, "no-refresh", false, "Do not refresh the access token on a 401")
	flags.StringArrayVarP(&a.headers, "header", "H", nil, "Extra request header as 'Name: value' (repeatable)")
	flags.StringVar(&a.metricsFile, "metrics-file", "", "Write request and refresh metrics to this file on success")

	cmd.AddCommand(
		signInCmd(a),
		signOutCmd(a),
		statusCmd(a),
		refreshCmd(a),
		getCmd(a),
		bodyCmd(a, "post", "Send a JSON POST request", apiclient.Post[any]),
		bodyCmd(a, "patch", "Send a JSON PATCH request", apiclient.Patch[any]),
		deleteCmd(a),
		uploadCmd(a),
		versionCmd(),
	)
	return cmd
}

func signInCmd(a *app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Exchange a username and password for a credential pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if username == "" {
				return fmt.Errorf("--username is required")
			}
			if password == "" {
				password = os.Getenv(passwordEnvVar)
			}
			if password == "" {
				var err error
				if password, err = readLine(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: "); err != nil {
					return err
				}
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			if err := c.SignIn(cmd.Context(), username, password); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", username)
			return err
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (defaults to $"+passwordEnvVar+", then a prompt)")
	return cmd
}

func signOutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Remove the stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			if err := c.SignOut(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return err
		},
	}
}

func statusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether credentials are stored and when the access token expires",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.client(); err != nil {
				return err
			}
			pair, err := credentials.LoadPair(cmd.Context(), a.store)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if pair.Access == "" && pair.Refresh == "" {
				_, err = fmt.Fprintln(out, "Not signed in")
				return err
			}
			fmt.Fprintf(out, "Access token:  %s\n", describeAccess(pair.Access, time.Now()))
			fmt.Fprintf(out, "Refresh token: %s\n", present(pair.Refresh))
			return nil
		},
	}
}

func refreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the access token now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			ok, err := c.RefreshAccessToken(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("refresh failed: run `apiclient signin` if the session has ended")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Access token refreshed")
			return err
		},
	}
}

func getCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get PATH",
		Short: "Send a GET request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, opts, err := a.prepare()
			if err != nil {
				return err
			}
			result, err := apiclient.Get[any](cmd.Context(), c, args[0], opts...)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), result)
		},
	}
}

type bodyCall func(ctx context.Context, c *apiclient.Client, path string, body any, options ...apiclient.CallOption) (any, error)

func bodyCmd(a *app, use, short string, call bodyCall) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   use + " PATH",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := parseData(data)
			if err != nil {
				return err
			}
			c, opts, err := a.prepare()
			if err != nil {
				return err
			}
			result, err := call(cmd.Context(), c, args[0], body, opts...)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON body, or @file to read it from a file")
	return cmd
}

func deleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete PATH",
		Short: "Send a DELETE request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, opts, err := a.prepare()
			if err != nil {
				return err
			}
			result, err := apiclient.Delete[any](cmd.Context(), c, args[0], opts...)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), result)
		},
	}
}

func uploadCmd(a *app) *cobra.Command {
	var fields, files []string
	cmd := &cobra.Command{
		Use:   "upload PATH",
		Short: "Send a multipart/form-data POST request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := buildForm(fields, files)
			if err != nil {
				return err
			}
			c, opts, err := a.prepare()
			if err != nil {
				return err
			}
			result, err := apiclient.PostFormData[any](cmd.Context(), c, args[0], form, opts...)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringArrayVar(&fields, "field", nil, "Form field as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&files, "file", nil, "File part as field=path (repeatable)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "apiclient %s\n", version)
		},
	}
}

func (a *app) prepare() (*apiclient.Client, []apiclient.CallOption, error) {
	opts, err := a.callOptions()
	if err != nil {
		return nil, nil, err
	}
	c, err := a.client()
	if err != nil {
		return nil, nil, err
	}
	return c, opts, nil
}

func buildForm(fields, files []string) (*apiclient.FormData, error) {
	form := apiclient.NewFormData()
	for _, f := range fields {
		name, value, err := splitPair(f, "=")
		if err != nil {
			return nil, fmt.Errorf("--field %q: %w", f, err)
		}
		form.AddField(name, value)
	}
	for _, f := range files {
		field, path, err := splitPair(f, "=")
		if err != nil {
			return nil, fmt.Errorf("--file %q: %w", f, err)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		form.AddFile(field, filepath.Base(path), "", content)
	}
	return form, nil
}

func splitPair(s, sep string) (string, string, error) {
	key, value, ok := strings.Cut(s, sep)
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("expected name%svalue", sep)
	}
	return key, strings.TrimSpace(value), nil
}

func readLine(in io.Reader, prompt io.Writer, label string) (string, error) {
	fmt.Fprint(prompt, label)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func describeAccess(access string, now time.Time) string {
	if access == "" {
		return "missing"
	}
	expiry, ok := tokenmodel.ExpiresAt(access)
	if !ok {
		return "present"
	}
	if !expiry.After(now) {
		return fmt.Sprintf("expired at %s", expiry.Local().Format(time.RFC3339))
	}
	return fmt.Sprintf("valid until %s (%s left)", expiry.Local().Format(time.RFC3339), expiry.Sub(now).Round(time.Second))
}

func present(token string) string {
	if token == "" {
		return "missing"
	}
	return "present"
}
