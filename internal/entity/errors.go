package entity

import "errors"

// Domain errors for the word store and learning ladder.
var (
	ErrWordNotFound         = errors.New("word not found")
	ErrTranslationNotFound  = errors.New("translation not found")
	ErrInvalidWord          = errors.New("invalid word text")
	ErrWordAlreadyExists    = errors.New("word already exists")
	ErrEmptyLadder          = errors.New("learning ladder has no rungs")
	ErrInvalidLadder        = errors.New("invalid learning ladder")
	ErrInvalidRecordEdit    = errors.New("invalid record edit")
	ErrInconsistentStore    = errors.New("word store is inconsistent")
	ErrUnknownState         = errors.New("unknown record state")
	ErrInvalidDisposition   = errors.New("invalid word disposition")
	ErrRecordNotPractisable = errors.New("record is not being learned")
)
