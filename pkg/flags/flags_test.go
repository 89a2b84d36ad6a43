package flags_test

import (
	"testing"

	g "github.com/onsi/gomega"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"glidein-submit/pkg/flags"
)

func TestBindCommandToViper_env(t *testing.T) {
	g.RegisterTestingT(t)

	viper.Reset()
	viper.SetEnvPrefix("GLIDEINTEST")
	t.Setenv("GLIDEINTEST_COUNT", "7")

	var count int
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().IntVar(&count, "count", 1, "")

	flags.BindCommandToViper(cmd)

	g.Expect(count).To(g.Equal(7))
}

func TestBindCommandToViper_flagWins(t *testing.T) {
	g.RegisterTestingT(t)

	viper.Reset()
	viper.SetEnvPrefix("GLIDEINTEST")
	t.Setenv("GLIDEINTEST_COUNT", "7")

	var count int
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().IntVar(&count, "count", 1, "")
	g.Expect(cmd.Flags().Set("count", "3")).To(g.Succeed())

	flags.BindCommandToViper(cmd)

	g.Expect(count).To(g.Equal(3))
}
