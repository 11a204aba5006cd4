// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 zhangpan-soft

// Package client implements the headless authenticator runtime.
//
// It wires configuration, the credential vault, clock synchronization, the
// Steam Web API adapter, session management, confirmations, and background
// checking into a single process lifecycle. Presentation surfaces embed the
// App and call its services; the package itself renders nothing.
package client
