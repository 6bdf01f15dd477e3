// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ysfang/gridbot/btse"
	"github.com/ysfang/gridbot/linenotify"
	"github.com/ysfang/gridbot/telegram"
)

type Secrets struct {
	BTSE       *btse.Credentials `json:"btse"`
	LineNotify *linenotify.Keys  `json:"linenotify"`
	Telegram   *telegram.Secrets `json:"telegram"`
}

func SecretsFromFile(fpath string) (*Secrets, error) {
	data, err := os.ReadFile(fpath)
	if err != nil {
		return nil, err
	}
	s := new(Secrets)
	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (v *Secrets) Check() error {
	if v.BTSE == nil {
		return fmt.Errorf("btse api keys are required: %w", os.ErrInvalid)
	}
	if err := v.BTSE.Check(); err != nil {
		return err
	}
	if v.LineNotify != nil {
		if err := v.LineNotify.Check(); err != nil {
			return err
		}
	}
	if v.Telegram != nil {
		if err := v.Telegram.Check(); err != nil {
			return err
		}
	}
	return nil
}
