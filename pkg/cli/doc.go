/*
Package cli provides the helpers shared by the esclient commands.

Output Formatting:

Resolved configuration can be printed as YAML (default), JSON or plain text:

	formatter := cli.NewFormatter(cli.FormatYAML)
	if err := formatter.FormatTo(os.Stdout, logging.Redact(doc)); err != nil {
		return err
	}

Option Tables:

	cli.RenderOptions(os.Stdout, []cli.OptionRow{
		{Flag: "--hosts", Env: "ESCLIENT_HOSTS", Default: "", Usage: "Elasticsearch URL"},
	})

Exit Codes:

ExitCode maps the esclient error taxonomy to a process exit status:
configuration errors exit 1, connection errors 2 and NotMaster 3.

Signal Handling:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
*/
package cli
