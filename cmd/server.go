package cmd

import (
	"Bt1Cut/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动1Cut服务器",
	Long:  `启动1Cut视频剪辑系统的HTTP服务器，提供时间线编辑API和播放头推送`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
