package xim

// Commit is the payload of CommitString: chars only, keysym only, or both.
// Build it with CommitChars, CommitKeySym or CommitBoth; exactly one shape is
// active.
type Commit struct {
	flag   LookupFlag
	keysym uint32
	chars  []byte
}

// CommitChars commits compound text.
func CommitChars(chars []byte) Commit {
	return Commit{flag: LookupChars, chars: chars}
}

// CommitKeySym commits a bare keysym.
func CommitKeySym(keysym uint32) Commit {
	return Commit{flag: LookupKeySym, keysym: keysym}
}

// CommitBoth commits a keysym together with compound text.
func CommitBoth(keysym uint32, chars []byte) Commit {
	return Commit{flag: LookupBoth, keysym: keysym, chars: chars}
}

// empty reports a zero Commit, or a Chars or Both commit without text.
func (c Commit) empty() bool {
	return c.flag == 0 || c.flag&LookupChars != 0 && len(c.chars) == 0
}

// Flag returns the lookup selector for the payload.
func (c Commit) Flag() LookupFlag { return c.flag }

// Chars returns the text part, nil for keysym-only commits.
func (c Commit) Chars() []byte {
	if c.flag&LookupChars == 0 || len(c.chars) == 0 {
		return nil
	}
	return c.chars
}

// KeySym returns the keysym part, 0 for chars-only commits.
func (c Commit) KeySym() uint32 {
	if c.flag&LookupKeySym == 0 {
		return 0
	}
	return c.keysym
}
