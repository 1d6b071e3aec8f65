package demo

import (
	"context"
	"io"
	"time"

	"github.com/secbyexample/seclab/internal/seclab/app"
	"github.com/secbyexample/seclab/pkg/cryptox"
)

// RunHashing walks through password storage: why plaintext comparison is
// unacceptable, what bcrypt output looks like, and why two hashes of the
// same password differ.
func RunHashing(_ context.Context, w io.Writer, _ *app.Application) error {
	title(w, "Password hashing")

	const password = "correct horse battery staple"

	section(w, "Hashing is one-way")
	start := time.Now()
	verifier, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}
	ok(w, "bcrypt verifier: %s", truncate(verifier, 40))
	note(w, "hashing took %s; the cost factor makes brute force expensive", time.Since(start).Round(time.Millisecond))
	note(w, "the password cannot be recovered from the verifier")

	section(w, "Same password, different verifier")
	other, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}
	if verifier != other {
		ok(w, "second hash differs: %s", truncate(other, 40))
		note(w, "bcrypt embeds a random salt, so identical passwords never collide in storage")
	} else {
		fail(w, "verifiers collided; the salt is not doing its job")
	}

	section(w, "Verification")
	if err := cryptox.VerifyPassword(password, verifier); err == nil {
		ok(w, "correct password accepted")
	}
	if err := cryptox.VerifyPassword("hunter2", verifier); err != nil {
		fail(w, "wrong password rejected: %v", err)
	}

	section(w, "Generated passwords")
	generated, err := cryptox.GeneratePassword()
	if err != nil {
		return err
	}
	ok(w, "random initial password: %s", generated)
	note(w, "handed to the user once, stored only as a verifier")

	return nil
}
