package cmd

import (
	"flag"

	"github.com/etnz/taxlots/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion tree of the taxlots command: every
// subcommand with its flags.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flagPredictors(flag.CommandLine),
	}
	root.Flags["config"] = predict.Files("*.toml")
	root.Flags["ledger-dir"] = predict.Dirs("*")

	for _, group := range Commands() {
		for _, cmd := range group {
			fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
			cmd.SetFlags(fs)
			root.Sub[cmd.Name()] = &complete.Command{Flags: flagPredictors(fs)}
		}
	}

	if topics, err := docs.GetAllTopics(); err == nil {
		root.Sub["topic"].Args = predict.Set(append(topics, "*"))
	}
	root.Sub["gains"].Flags["y"] = predict.Something
	return root
}

// flagPredictors predicts a value for every flag of fs but booleans.
func flagPredictors(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			flags[f.Name] = predict.Nothing
			return
		}
		flags[f.Name] = predict.Something
	})
	return flags
}
