package detail

import (
	"fmt"
	"io"

	"CoffeeStore-App/internal/domain/model"
)

// Render 詳細ページの内容をテキストで書き出す
func Render(w io.Writer, v View) error {
	switch v.State {
	case StateError:
		_, err := fmt.Fprintln(w, "Something went wrong retrieving coffee store page!")
		return err
	case StateResolving, StateLoading:
		_, err := fmt.Fprintln(w, "Loading...")
		return err
	}

	imgURL := v.Store.ImgURL
	if imgURL == "" {
		imgURL = model.PlaceholderImageURL
	}

	if _, err := fmt.Fprintf(w, "%s\n  image:   %s\n  address: %s\n", v.Store.Name, imgURL, v.Store.Address); err != nil {
		return err
	}
	if v.Store.Neighbourhood != "" {
		if _, err := fmt.Fprintf(w, "  area:    %s\n", v.Store.Neighbourhood); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "  votes:   %d\n", v.Votes); err != nil {
		return err
	}
	if v.UpvoteErr != nil {
		if _, err := fmt.Fprintf(w, "  (upvote failed: %v)\n", v.UpvoteErr); err != nil {
			return err
		}
	}
	return nil
}
