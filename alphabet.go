package darknet

// Alphabet wraps the glyph images darknet uses to render label text
type Alphabet struct {
	lib    *Library
	handle AlphabetHandle
}

// LoadAlphabet wraps load_alphabet.  The glyphs are read from data/labels/
// relative to the working directory, darknet terminates the process when
// they are missing.
func (l *Library) LoadAlphabet() *Alphabet {
	return &Alphabet{
		lib:    l,
		handle: l.engine.LoadAlphabet(),
	}
}

// Close releases every glyph image as a group.  Only the first call
// releases, subsequent calls do nothing.
func (a *Alphabet) Close() error {

	if a.handle == nil {
		return nil
	}

	a.lib.engine.FreeAlphabet(a.handle)
	a.handle = nil

	return nil
}
