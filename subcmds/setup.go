// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bvkgo/kv/kvmemdb"
	"github.com/visvasity/cli"
	"golang.org/x/term"

	"github.com/ysfang/gridbot/btse"
	"github.com/ysfang/gridbot/ctxutil"
	"github.com/ysfang/gridbot/linenotify"
	"github.com/ysfang/gridbot/server"
	"github.com/ysfang/gridbot/telegram"
)

type Setup struct {
	dataDir     string
	secretsPath string
	skipTesting bool
}

func (c *Setup) Purpose() string {
	return "Setup prints and/or configures gridbot daemon credentials"
}

func (c *Setup) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("setup", flag.ContinueOnError)
	fset.StringVar(&c.dataDir, "data-dir", "", "path to the data directory")
	fset.StringVar(&c.secretsPath, "secrets-file", "", "path to credentials file")
	fset.BoolVar(&c.skipTesting, "skip-testing", false, "don't test the parameters")
	return "setup", fset, cli.CmdFunc(c.run)
}

func (c *Setup) Description() string {
	return `

Command "setup" helps users configure BTSE API keys and the optional
notification services. Command prints current config when run without any
arguments.

BTSE PARAMETERS

BTSE API keys are required to query and put buy/sell orders on the
exchange. They can be configured as follows:

  $ gridbot setup btse-key=111111111 btse-secret=2222222222

LINE NOTIFY PARAMETERS

The LINE Notify token is optional. It is required to receive notifications
through the LINE messenger:

  $ gridbot setup line-token=awja5ue...ito7svf

TELEGRAM PARAMETERS

Telegram parameters are optional. They are required to receive
notifications and to control the bot through telegram chat commands:

  $ gridbot setup telegram-bot-token=USCJS2...TVP4KV telegram-owner-id=username

`
}

func (c *Setup) run(ctx context.Context, args []string) error {
	if len(c.dataDir) == 0 {
		c.dataDir = filepath.Join(os.Getenv("HOME"), ".gridbot")
	}
	if _, err := os.Stat(c.dataDir); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("could not stat data directory %q: %w", c.dataDir, err)
		}
		if len(args) == 0 {
			return fmt.Errorf("gridbot is not configured")
		}
		if err := os.MkdirAll(c.dataDir, 0700); err != nil {
			return fmt.Errorf("could not create data directory %q: %w", c.dataDir, err)
		}
	}
	dataDir, err := filepath.Abs(c.dataDir)
	if err != nil {
		return fmt.Errorf("could not determine data-dir %q absolute path: %w", c.dataDir, err)
	}

	if len(c.secretsPath) == 0 {
		c.secretsPath = filepath.Join(dataDir, "secrets.json")
	}
	secrets, err := server.SecretsFromFile(c.secretsPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if len(args) == 0 {
			return fmt.Errorf("gridbot is not configured")
		}
	}

	if len(args) == 0 {
		js, _ := json.MarshalIndent(secrets, "", "  ")
		fmt.Printf("%s\n", js)
		return nil
	}

	if secrets == nil {
		secrets = &server.Secrets{}
	}

	validKeys := []string{"btse-key", "btse-secret", "line-token", "telegram-bot-token", "telegram-owner-id", "telegram-admin-id"}
	kvMap := make(map[string]string)
	// Parse config values from the command-line.
	for _, arg := range args {
		before, after, found := strings.Cut(arg, "=")
		if !found {
			return fmt.Errorf("invalid config argument %q", arg)
		}
		if !slices.Contains(validKeys, before) {
			return fmt.Errorf("invalid/unrecognized config item key %q", before)
		}
		if v, ok := kvMap[before]; ok && v != after {
			return fmt.Errorf("config item key %q is found with different values", before)
		}
		kvMap[before] = after
	}

	btseKey := kvMap["btse-key"]
	btseSecret := kvMap["btse-secret"]
	if len(btseKey) != 0 || len(btseSecret) != 0 {
		if len(btseKey) == 0 || len(btseSecret) == 0 {
			return fmt.Errorf(`both "btse-key" and "btse-secret" parameters are required`)
		}
		secrets.BTSE = &btse.Credentials{
			Key:    btseKey,
			Secret: btseSecret,
		}
		if !c.skipTesting {
			// Fetch an orderbook to validate the keys and connectivity.
			client, err := btse.New(secrets.BTSE, nil)
			if err != nil {
				return err
			}
			if _, err := client.GetOrderbook(ctx, "BTCPFC"); err != nil {
				client.Close()
				return fmt.Errorf("could not query btse with the given keys: %w", err)
			}
			client.Close()
		}
	}

	if lineToken := kvMap["line-token"]; len(lineToken) != 0 {
		secrets.LineNotify = &linenotify.Keys{
			Token: lineToken,
		}
		if !c.skipTesting {
			client, err := linenotify.New(secrets.LineNotify)
			if err != nil {
				return err
			}
			if err := client.SendMessage(ctx, time.Now(), "Test message from gridbot config setup; please ignore."); err != nil {
				return err
			}
		}
	}

	botToken := kvMap["telegram-bot-token"]
	ownerID := kvMap["telegram-owner-id"]
	if len(botToken) != 0 || len(ownerID) != 0 {
		if len(botToken) == 0 || len(ownerID) == 0 {
			return fmt.Errorf(`both "telegram-bot-token" and "telegram-owner-id" parameters are required`)
		}
		secrets.Telegram = &telegram.Secrets{
			BotToken: botToken,
			OwnerID:  ownerID,
			AdminID:  kvMap["telegram-admin-id"],
		}
		if !c.skipTesting {
			func() {
				fmt.Println("Start a chat with the telegram bot and then press any key")
				// switch stdin into 'raw' mode
				oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
				if err != nil {
					log.Fatal(err)
				}
				defer term.Restore(int(os.Stdin.Fd()), oldState)

				b := make([]byte, 1)
				if _, err := os.Stdin.Read(b); err != nil {
					log.Fatal(err)
				}
			}()

			client, err := telegram.New(ctx, kvmemdb.New(), secrets.Telegram)
			if err != nil {
				return err
			}
			ctxutil.Sleep(ctx, time.Second)
			if err := client.SendMessage(ctx, time.Now(), "Test message from gridbot config setup; please ignore."); err != nil {
				return err
			}
			client.Close()
		}
	}

	if err := secrets.Check(); err != nil {
		return err
	}

	js, err := json.MarshalIndent(secrets, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.secretsPath, js, os.FileMode(0600)); err != nil {
		return err
	}
	return nil
}
