package features

// Extract derives the signed contextual features of every unit occurrence
// in sent. A nil known disables filtering; otherwise neighbouring units
// missing from the respective vocabulary are treated as blank.
//
// For the leading unit at position i the features are the previous word
// (-R, -L+R) and its own trailing unit extended rightwards (+R, +R+nextL,
// +R+nextL+nextR). For the trailing unit they are the leading unit
// extended leftwards (-L, -prevR+L, -prevL+prevR+L) and the next word
// (+nextL, +nextL+nextR). A leading unit without features is not emitted;
// a trailing unit is emitted whenever it is non-empty.
func Extract(sent []LR, known *Known) []Occurrence {
	if len(sent) == 0 {
		return nil
	}
	last := len(sent) - 1
	out := make([]Occurrence, 0, 2*len(sent))

	for i, w := range sent {
		l, r := w.L, w.R

		var prevL, prevR, nextL, nextR string
		if i > 0 {
			prevL, prevR = known.left(sent[i-1].L), known.right(sent[i-1].R)
		}
		if i < last {
			nextL, nextR = known.left(sent[i+1].L), known.right(sent[i+1].R)
		}

		lf := make(Set)
		if i > 0 {
			lf.Add(prevR, Left)
			lf.Add(prevL+prevR, Left)
		}
		if i == last && r != "" {
			lf.Add(r, Right)
		} else {
			lf.Add(r, Right)
			lf.Add(r+nextL, Right)
			lf.Add(r+nextL+nextR, Right)
		}
		if len(lf) > 0 {
			out = append(out, Occurrence{Unit: Unit{Text: l, Tag: TagL}, Features: lf})
		}

		if r == "" {
			continue
		}
		rf := make(Set)
		if i == 0 {
			rf.Add(l, Left)
		} else {
			rf.Add(l, Left)
			rf.Add(prevR+l, Left)
			rf.Add(prevL+prevR+l, Left)
		}
		if i < last {
			rf.Add(nextL, Right)
			rf.Add(nextL+nextR, Right)
		}
		out = append(out, Occurrence{Unit: Unit{Text: r, Tag: TagR}, Features: rf})
	}
	return out
}
