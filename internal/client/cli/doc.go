// Package cli is the interactive MealMate chat client.
//
// It prompts for credentials (the password is read without echo), signs in
// over the REST API, looks up the display name and joins the shared chat
// room. History is printed first, then live messages as "user: content".
// Each line typed is sent to the room; end of input leaves.
package cli
