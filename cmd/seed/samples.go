package main

import "github.com/aashari/go-content-dashboard/internal/types"

type sample struct {
	types.ContentCreateData
	Favorite bool
}

var sampleContent = []sample{
	{
		ContentCreateData: types.ContentCreateData{
			Title:   "The Future of AI in Web Development",
			Summary: "Exploring how artificial intelligence is changing the way we build and maintain web applications, from automated code generation to intelligent debugging.",
			Tags:    []string{"AI", "Web Development", "Technology", "Future"},
			Source: types.ContentSource{
				Name:      "TechCrunch",
				AvatarURL: "https://techcrunch.com/wp-content/uploads/2015/02/cropped-cropped-favicon-gradient.png",
				Type:      types.SourceArticle,
				URL:       "https://techcrunch.com",
			},
			Date:        "2024-01-15T00:00:00Z",
			ReadTime:    "5 min read",
			OriginalURL: "https://techcrunch.com/ai-web-development",
		},
		Favorite: true,
	},
	{
		ContentCreateData: types.ContentCreateData{
			Title:   "Next.js 14: What's New and Exciting",
			Summary: "An overview of the latest features in Next.js 14, including improved performance, new routing capabilities and a better developer experience.",
			Tags:    []string{"Next.js", "React", "JavaScript", "Framework"},
			Source: types.ContentSource{
				Name:      "Vercel",
				AvatarURL: "https://vercel.com/favicon.ico",
				Type:      types.SourceArticle,
				URL:       "https://vercel.com",
			},
			Date:        "2024-01-10T00:00:00Z",
			ReadTime:    "8 min read",
			OriginalURL: "https://vercel.com/blog/nextjs-14",
		},
	},
	{
		ContentCreateData: types.ContentCreateData{
			Title:   "Building Scalable TypeScript Applications",
			Summary: "Best practices for structuring large TypeScript projects, keeping type safety strict and maintaining code quality as the application grows.",
			Tags:    []string{"TypeScript", "Architecture", "Best Practices", "Scalability"},
			Source: types.ContentSource{
				Name:      "Dev.to",
				AvatarURL: "https://dev.to/favicon.ico",
				Type:      types.SourceArticle,
				URL:       "https://dev.to",
			},
			Date:        "2024-01-08T00:00:00Z",
			ReadTime:    "12 min read",
			OriginalURL: "https://dev.to/typescript-scalable-apps",
		},
	},
	{
		ContentCreateData: types.ContentCreateData{
			Title:   "React Hooks Deep Dive",
			Summary: "An in-depth exploration of React Hooks, from useState and useEffect to advanced patterns with custom hooks.",
			Tags:    []string{"React", "Hooks", "JavaScript", "Frontend"},
			Source: types.ContentSource{
				Name:      "React Newsletter",
				AvatarURL: "https://react.dev/favicon.ico",
				Type:      types.SourceNewsletter,
				URL:       "https://react.dev",
			},
			Date:        "2024-01-05T00:00:00Z",
			ReadTime:    "15 min read",
			OriginalURL: "https://react.dev/hooks-deep-dive",
		},
		Favorite: true,
	},
	{
		ContentCreateData: types.ContentCreateData{
			Title:   "Modern CSS Techniques for 2024",
			Summary: "Container queries, subgrid and the other CSS features changing how we style web applications.",
			Tags:    []string{"CSS", "Frontend", "Design", "Web Development"},
			Source: types.ContentSource{
				Name: "CSS-Tricks",
				Type: types.SourceYouTube,
				URL:  "https://youtube.com/@css-tricks",
			},
			Date:        "2024-01-03T00:00:00Z",
			ReadTime:    "20 min watch",
			OriginalURL: "https://youtube.com/watch?v=modern-css-2024",
		},
	},
}
