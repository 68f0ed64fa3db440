package content

import (
	"context"

	"github.com/foliohq/folio/pkg/fl/validation"
)

// ProjectFormSpec builds the form description for projects: name and
// description are required, the gallery is optional and resolves to hosted
// URLs through the store's upload endpoint.
func ProjectFormSpec(
	create func(ctx context.Context, draft Project) (Project, error),
	update func(ctx context.Context, id string, draft Project) (Project, error),
) FormSpec[Project] {
	return FormSpec[Project]{
		New: func() Project { return Project{} },
		Fields: map[string]func(*Project, string){
			"name":        func(p *Project, v string) { p.Name = v },
			"description": func(p *Project, v string) { p.Description = v },
		},
		Validate: func(p Project) validation.ValidationErrors {
			var verrs validation.ValidationErrors
			if !validation.IsRequired(p.Name) {
				verrs.Add("name", "is required")
			}
			if !validation.IsRequired(p.Description) {
				verrs.Add("description", "is required")
			}
			return verrs
		},
		Attach: func(p Project, slot Slot, refs []string) Project {
			if slot == SlotGallery {
				p.Images = append(p.Images, refs...)
			}
			return p
		},
		Detach: func(p Project, slot Slot, index int) Project {
			if slot == SlotGallery && index >= 0 && index < len(p.Images) {
				p.Images = append(p.Images[:index], p.Images[index+1:]...)
			}
			return p
		},
		Destination: DestinationRemote,
		Create:      create,
		Update:      update,
	}
}

// BlogFormSpec builds the form description for blog posts: title and excerpt
// are required, the cover slot replaces, additional images append, and all
// images resolve inline without a network call.
func BlogFormSpec(
	create func(ctx context.Context, draft BlogPost) (BlogPost, error),
	update func(ctx context.Context, id string, draft BlogPost) (BlogPost, error),
) FormSpec[BlogPost] {
	return FormSpec[BlogPost]{
		New: func() BlogPost { return BlogPost{} },
		Fields: map[string]func(*BlogPost, string){
			"title":   func(b *BlogPost, v string) { b.Title = v },
			"excerpt": func(b *BlogPost, v string) { b.Excerpt = v },
		},
		Validate: func(b BlogPost) validation.ValidationErrors {
			var verrs validation.ValidationErrors
			if !validation.IsRequired(b.Title) {
				verrs.Add("title", "is required")
			}
			if !validation.IsRequired(b.Excerpt) {
				verrs.Add("excerpt", "is required")
			}
			return verrs
		},
		Attach: func(b BlogPost, slot Slot, refs []string) BlogPost {
			switch slot {
			case SlotCover:
				if len(refs) > 0 {
					b.CoverImage = refs[len(refs)-1]
				}
			case SlotGallery:
				b.AdditionalImages = append(b.AdditionalImages, refs...)
			}
			return b
		},
		Detach: func(b BlogPost, slot Slot, index int) BlogPost {
			switch slot {
			case SlotCover:
				b.CoverImage = ""
			case SlotGallery:
				if index >= 0 && index < len(b.AdditionalImages) {
					b.AdditionalImages = append(b.AdditionalImages[:index], b.AdditionalImages[index+1:]...)
				}
			}
			return b
		},
		Destination: DestinationInline,
		Create:      create,
		Update:      update,
	}
}
