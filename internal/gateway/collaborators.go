package gateway

import "context"

// Navigator moves the user to another screen.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Notifier shows a blocking notice to the user.
type Notifier interface {
	Notice(ctx context.Context, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, message string)

func (f NotifierFunc) Notice(ctx context.Context, message string) { f(ctx, message) }

// TokenStore holds the token pair. *storage.Credentials implements it.
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	SetTokens(ctx context.Context, access, refresh string) error
	Clear(ctx context.Context) error
}

type noopNavigator struct{}

func (noopNavigator) Navigate(string) {}

type noopNotifier struct{}

func (noopNotifier) Notice(context.Context, string) {}
