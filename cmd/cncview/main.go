package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/mastercactapus/cncview/config"
	"github.com/mastercactapus/cncview/flatten"
	"github.com/mastercactapus/cncview/interp"
	"github.com/mastercactapus/cncview/subprog"
	"github.com/spf13/cobra"
)

type options struct {
	configFile   string
	library      string
	paramProgram string
	addr         string
	debounce     time.Duration
	jsonOut      bool
}

func main() {
	log.SetFlags(log.Lshortfile)

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:          "cncview",
		Short:        "Annotate R-parameter lathe programs with their resolved values.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "HCL config file.")
	root.PersistentFlags().StringVar(&opts.library, "library", "", "Program library file (.json, .yaml) or directory of program files.")
	root.PersistentFlags().StringVar(&opts.paramProgram, "param-program", "", "Name of the parameter subprogram (default L105).")

	annotate := &cobra.Command{
		Use:   "annotate <file>",
		Short: "Print a program with interpreted lines below each source line.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := interpretFile(cmd, &opts, args[0])
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			if err := interp.Render(cmd.OutOrStdout(), res.Lines); err != nil {
				return err
			}
			for _, d := range res.Diagnostics {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", d.Kind(), d)
			}
			return nil
		},
	}
	annotate.Flags().BoolVar(&opts.jsonOut, "json", false, "Write the result as JSON.")

	registers := &cobra.Command{
		Use:   "registers <file>",
		Short: "Print the register values after running a program.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := interpretFile(cmd, &opts, args[0])
			if err != nil {
				return err
			}
			for _, r := range res.Registers {
				fmt.Fprintln(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}

	flat := &cobra.Command{
		Use:   "flatten <file>",
		Short: "Print a program as plain G-code with every parameter resolved.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := interpretFile(cmd, &opts, args[0])
			if err != nil {
				return err
			}
			p, err := flatten.Flatten(res)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), p.String())
			return err
		},
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the annotation API and live editing session.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, &opts)
			if err != nil {
				return err
			}
			lib, err := loadLibrary(cfg.LibraryPath)
			if err != nil {
				return err
			}
			a := newAPI(cfg, lib)
			log.Println("Listening on", cfg.Addr)
			return http.ListenAndServe(cfg.Addr, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				w.Header().Set("Access-Control-Allow-Methods", "*")
				log.Printf("%s %s - %s", req.Method, req.URL.Path, req.RemoteAddr)
				a.ServeHTTP(w, req)
			}))
		},
	}
	serve.Flags().StringVar(&opts.addr, "addr", "", "Address to bind the server to (default :8000).")
	serve.Flags().DurationVar(&opts.debounce, "debounce", 0, "Delay before reinterpreting edits in a live session (default 300ms).")

	root.AddCommand(annotate, registers, flat, serve)
	return root
}

// loadConfig applies defaults, then the config file, then explicit flags.
func loadConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg := config.Default()
	if opts.configFile != "" {
		var err error
		cfg, err = config.Load(opts.configFile)
		if err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("library") {
		cfg.LibraryPath = opts.library
	}
	if flags.Changed("param-program") {
		cfg.Interpreter.ParamProgram = opts.paramProgram
	}
	if flags.Changed("addr") {
		cfg.Addr = opts.addr
	}
	if flags.Changed("debounce") {
		cfg.Debounce = opts.debounce
	}
	return cfg, nil
}

func loadLibrary(path string) (*subprog.Library, error) {
	if path == "" {
		return subprog.NewLibrary(), nil
	}
	lib, err := subprog.LoadLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("load library '%s': %w", path, err)
	}
	return lib, nil
}

func interpretFile(cmd *cobra.Command, opts *options, name string) (*interp.Result, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}
	lib, err := loadLibrary(cfg.LibraryPath)
	if err != nil {
		return nil, err
	}

	var data []byte
	if name == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, err
	}

	return interp.New(lib, cfg.Interpreter).ParseProgram(cmd.Context(), string(data))
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
