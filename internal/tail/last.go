package tail

// LastLines returns up to n of the newest complete, non-oversized lines in
// path (all of them when n <= 0) and a cursor positioned after the last
// complete line, suitable for following the file from there. A missing file
// yields no lines and a zero cursor.
func LastLines(path string, n int) ([]string, Cursor, error) {
	var (
		cur   Cursor
		ring  []string
		all   []string
		count int
		idx   int
	)
	if n > 0 {
		ring = make([]string, n)
	}

	for {
		batch, err := Poll(path, cur)
		if err != nil {
			return nil, Cursor{}, err
		}
		if batch.Missing {
			return nil, Cursor{}, nil
		}
		for _, line := range batch.Lines {
			if line.Oversized {
				continue
			}
			text := string(line.Data)
			if n <= 0 {
				all = append(all, text)
				continue
			}
			ring[idx] = text
			idx = (idx + 1) % n
			if count < n {
				count++
			}
		}
		cur = batch.Next
		if !batch.More {
			break
		}
	}

	if n <= 0 {
		return all, cur, nil
	}
	lines := make([]string, count)
	if count == n {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%n]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, cur, nil
}
