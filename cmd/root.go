package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// defaultDataFile is picked up by the bare `lifelines` invocation when it
// exists in the working directory.
const defaultDataFile = "lifelines.csv"

var rootCmd = &cobra.Command{
	Use:   "lifelines",
	Short: "Hostage timeline flow renderer",
	Long: `Lifelines turns a CSV of hostage records into an SVG timeline: one
continuous line per individual, flowing between status lanes as their
situation changes, colored by how their journey ended.`,
	RunE: runRootDefault,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .lifelines.yaml)")
	rootCmd.PersistentFlags().String("catalog", "", "lane catalog TOML (default: built-in lanes)")
	rootCmd.PersistentFlags().String("now", "", "present date for open-ended lines (YYYY-MM-DD)")
	rootCmd.PersistentFlags().Bool("ltr", false, "render left-to-right instead of right-to-left")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".lifelines")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("LIFELINES")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// runRootDefault launches the explorer when lifelines.csv exists in the cwd.
// Otherwise it falls back to showing help.
func runRootDefault(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(defaultDataFile); os.IsNotExist(err) {
		return cmd.Help()
	}
	return runExplore(exploreCmd, []string{defaultDataFile})
}
