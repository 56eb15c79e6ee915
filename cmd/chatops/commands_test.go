package main

import (
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"
)

func quiet(cmd *cobra.Command) *cobra.Command {
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd
}

var _ = Describe("commands", func() {
	It("rejects unknown migration directions before touching the database", func() {
		cmd := quiet(migrateCmd())
		cmd.SetArgs([]string{"sideways"})

		err := cmd.Execute()

		Expect(err).To(MatchError(ContainSubstring("sideways")))
	})

	DescribeTable("require their identifying flag",
		func(build func() *cobra.Command, flag string) {
			cmd := quiet(build())
			cmd.SetArgs([]string{})

			err := cmd.Execute()

			Expect(err).To(MatchError(ContainSubstring(flag)))
		},
		Entry("install", installCmd, "code"),
		Entry("revoke", revokeCmd, "integration"),
		Entry("channels", channelsCmd, "integration"),
		Entry("summary", summaryCmd, "integration"),
	)
})
