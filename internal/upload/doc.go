// Package upload holds the photo a user has selected for analysis: its bytes, the
// media type it was accepted under and a small preview shown back to the user.
package upload
