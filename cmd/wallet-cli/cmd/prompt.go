package cmd

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"
)

// readPassword 交互式读取密码; 非终端环境使用 wallet.password (WALLET_PASSWORD)
func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		if cfg.Wallet.Password == "" {
			return "", errors.New("stdin is not a terminal and WALLET_PASSWORD is empty")
		}
		return cfg.Wallet.Password, nil
	}
	fmt.Print(prompt)
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("读取密码失败: %w", err)
	}
	return string(b), nil
}
