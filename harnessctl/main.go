package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

// Environment var for the URL on which the harness bridge is accessible.
const envHarnessURL = "HARNESS_URL"

func loadHarnessURL() (*url.URL, error) {
	rawurl := os.Getenv(envHarnessURL)
	if rawurl == "" {
		rawurl = "http://localhost:8001"
	}
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("%v is not an absolute URL", u)
	}
	if u.Path != "" && u.Path != "/" {
		return nil, fmt.Errorf("%v has a path, which is not allowed", u)
	}
	return u, nil
}

type flagSet struct {
	Parameters  string
	FetchMethod string
	FetchBody   string
}

func clientCmd(c *client, flags *flagSet, runFn func(*client, *flagSet, *cobra.Command, []string)) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		runFn(c, flags, cmd, args)
	}
}

func main() {
	log.SetFlags(0)
	harnessURL, err := loadHarnessURL()
	if err != nil {
		log.Fatal(err)
	}
	c := newClient(harnessURL)

	flags := &flagSet{}

	getCmd := &cobra.Command{
		Use:   "get PATH",
		Short: "Fetch a page the way the web view would",
		Long:  "Fetch PATH from the running harness and print the response body",
		Run:   clientCmd(c, flags, pageGet),
	}

	sendCmd := &cobra.Command{
		Use:   "send COMMAND",
		Short: "Send a command object to the harness",
		Long: `Send a command object named COMMAND to the running harness and print the
JSON response, the way page script would over the bridge`,
		Run: clientCmd(c, flags, commandSend),
	}
	sendCmd.Flags().StringVarP(&flags.Parameters, "parameters", "p", "", "Parameters for the command; they must be specified as a valid JSON object")

	fetchCmd := &cobra.Command{
		Use:   "fetch RESOURCE",
		Short: "Relay an HTTPS fetch through the harness",
		Long:  "Ask the running harness to fetch RESOURCE and print the result envelope",
		Run:   clientCmd(c, flags, fetchSend),
	}
	fetchCmd.Flags().StringVarP(&flags.FetchMethod, "method", "m", "", "HTTP method for the relayed fetch, defaults to GET")
	fetchCmd.Flags().StringVarP(&flags.FetchBody, "body", "b", "", "Body for the relayed fetch, sent as JSON")

	rootCmd := &cobra.Command{
		Use: "harnessctl",
	}
	rootCmd.AddCommand(
		getCmd,
		sendCmd,
		fetchCmd,
	)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func pageGet(c *client, flags *flagSet, cmd *cobra.Command, args []string) {
	if len(args) != 1 {
		cmd.Usage()
		return
	}
	body, err := c.Get(args[0])
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(body)
}

func commandSend(c *client, flags *flagSet, cmd *cobra.Command, args []string) {
	if len(args) != 1 {
		cmd.Usage()
		return
	}
	command := map[string]any{"command": args[0]}
	if flags.Parameters != "" {
		var parameters map[string]any
		if err := json.Unmarshal([]byte(flags.Parameters), &parameters); err != nil {
			log.Fatalf("error parsing parameters: %v", err)
		}
		command["parameters"] = parameters
	}
	printResponse(c, command)
}

func fetchSend(c *client, flags *flagSet, cmd *cobra.Command, args []string) {
	if len(args) != 1 {
		cmd.Usage()
		return
	}
	parameters := map[string]any{"resource": args[0]}
	options := map[string]any{}
	if flags.FetchMethod != "" {
		options["method"] = flags.FetchMethod
	}
	if flags.FetchBody != "" {
		options["body"] = flags.FetchBody
	}
	if len(options) > 0 {
		parameters["options"] = options
	}
	printResponse(c, map[string]any{
		"command":    "fetch",
		"parameters": parameters,
	})
}

func printResponse(c *client, command map[string]any) {
	response, err := c.Send(command)
	if err != nil {
		log.Fatal(err)
	}
	pretty, err := json.MarshalIndent(response, "", "    ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(pretty))
}
