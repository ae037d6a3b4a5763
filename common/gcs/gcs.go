// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gcs creates Google Cloud Storage clients for the cache store
// and for gs:// fixtures.
package gcs

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

type AuthOption int

const (
	AuthNone AuthOption = iota
	AuthAppDefault
	NumAuthOptions
)

var authOptString = [NumAuthOptions]string{
	"none",
	"app-default",
}

func (a *AuthOption) String() string {
	return authOptString[*a]
}

func (a *AuthOption) Set(input string) error {
	for i := range authOptString {
		if authOptString[i] == input {
			*a = AuthOption(i)
			return nil
		}
	}
	return fmt.Errorf("unrecognized authentication option: %s", input)
}

// AuthOptions lists the accepted values of AuthOption, for flag help.
func AuthOptions() string {
	return strings.Join(authOptString[:], ", ")
}

// NewClient returns a storage client with read-only or read-write scope.
// Writing requires credentials.
func NewClient(ctx context.Context, auth AuthOption, write bool) (*storage.Client, error) {
	scope := storage.ScopeReadOnly
	if write {
		scope = storage.ScopeReadWrite
	}
	opts := []option.ClientOption{option.WithScopes(scope)}
	switch auth {
	case AuthAppDefault:
		creds, err := google.FindDefaultCredentials(ctx, scope)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithCredentials(creds))
	case AuthNone:
		if write {
			return nil, fmt.Errorf("authentication required for upload")
		}
		opts = append(opts, option.WithoutAuthentication())
	default:
		return nil, fmt.Errorf("unknown authentication method")
	}
	return storage.NewClient(ctx, opts...)
}

// ParseURL splits a gs://bucket/object URL.
func ParseURL(raw string) (bucket, object string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "gs" {
		return "", "", fmt.Errorf("%q is not a gs:// URL", raw)
	}
	object = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || object == "" {
		return "", "", fmt.Errorf("%q must name a bucket and an object", raw)
	}
	return u.Host, object, nil
}
