package main

import (
	"github.com/shouni/gemini-studio-kit/cmd"
)

// main はエントリーポイントです。引数の解析と実行は cmd パッケージに任せます。
func main() {
	cmd.Execute()
}
