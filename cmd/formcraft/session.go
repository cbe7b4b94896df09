package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/shubham-ralli/form-b/internal/apiclient"
	"github.com/shubham-ralli/form-b/internal/formscache"
	"github.com/shubham-ralli/form-b/internal/localstore"
)

const keyToken = "formcraft_token"

var errNotLoggedIn = errors.New("not logged in; run `formcraft login` first")

// session is one signed-in user's client, local state and forms cache.
type session struct {
	client *apiclient.Client
	state  *localstore.Store
	forms  *formscache.Store
}

func openState() (*localstore.Store, error) {
	path := statePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return localstore.Open(path)
}

func openSession() (*session, error) {
	state, err := openState()
	if err != nil {
		return nil, err
	}
	var token string
	if ok, err := state.Get(keyToken, &token); err != nil {
		return nil, err
	} else if !ok || token == "" {
		return nil, errNotLoggedIn
	}
	client := apiclient.New(viper.GetString("api_url"), apiclient.WithToken(token))
	return &session{
		client: client,
		state:  state,
		forms:  formscache.New(client, state),
	}, nil
}
